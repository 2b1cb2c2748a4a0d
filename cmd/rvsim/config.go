package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/pkg/log"
)

// Config everything a run needs. A -config file fills it first, flags given
// on the command line then override the file.
type Config struct {
	Image    string `json:"image"`
	XLEN     int    `json:"xlen"`
	ABI      string `json:"abi"`
	FloatABI string `json:"float_abi"`
	Harts    int    `json:"harts"`
	// LoadAddress where the flat image is copied, also the default entry
	LoadAddress uint64 `json:"load_address"`
	Entry       uint64 `json:"entry"`
	StackTop    uint64 `json:"stack_top"`
	StackSize   uint64 `json:"stack_size"`
	MaxSteps    uint64 `json:"max_steps"`
	Parallel    bool   `json:"parallel"`
	// Dir the directory guest paths resolve against
	Dir        string `json:"dir"`
	SnapshotDB string `json:"snapshot_db"`
	LogLevel   string `json:"log_level"`
	LogType    string `json:"log_type"`
}

func defaultConfig() Config {
	return Config{
		XLEN:        64,
		ABI:         "standard",
		FloatABI:    "double",
		Harts:       1,
		LoadAddress: 0x10000,
		StackTop:    0x7fff_f000,
		StackSize:   0x10_0000,
		LogLevel:    "info",
		LogType:     "console",
	}
}

func flagSet(cfg *Config, configPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(configPath, "config", "", "JSON file with defaults for every flag")
	fs.IntVar(&cfg.XLEN, "xlen", cfg.XLEN, "register width, 32 or 64")
	fs.StringVar(&cfg.ABI, "abi", cfg.ABI, "integer ABI: standard or reduced")
	fs.StringVar(&cfg.FloatABI, "float-abi", cfg.FloatABI, "float registers: soft, single, double or quad")
	fs.IntVar(&cfg.Harts, "harts", cfg.Harts, "number of harts sharing the image")
	fs.Uint64Var(&cfg.LoadAddress, "load", cfg.LoadAddress, "address the image is loaded at")
	fs.Uint64Var(&cfg.Entry, "entry", cfg.Entry, "initial pc, the load address when zero")
	fs.Uint64Var(&cfg.StackTop, "stack-top", cfg.StackTop, "initial sp of hart 0")
	fs.Uint64Var(&cfg.StackSize, "stack-size", cfg.StackSize, "stack bytes reserved per hart")
	fs.Uint64Var(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "instructions per hart, zero for no limit")
	fs.BoolVar(&cfg.Parallel, "parallel", cfg.Parallel, "run every hart on its own goroutine")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory guest file paths resolve against")
	fs.StringVar(&cfg.SnapshotDB, "snapshot-db", cfg.SnapshotDB, "pebble directory receiving the final register snapshots")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	fs.StringVar(&cfg.LogType, "log-type", cfg.LogType, "console or json")
	return fs
}

// parseConfig reads the command line twice: once to find -config, then on
// top of the file's contents
func parseConfig(args []string) (Config, error) {
	var configPath string
	pre := defaultConfig()
	if err := flagSet(&pre, &configPath).Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if configPath != "" {
		b, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}
	fs := flagSet(&cfg, &configPath)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		cfg.Image = fs.Arg(0)
	}
	if cfg.Entry == 0 {
		cfg.Entry = cfg.LoadAddress
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Image == "" {
		errs = append(errs, errors.New("no image given"))
	}
	if c.XLEN != 32 && c.XLEN != 64 {
		errs = append(errs, fmt.Errorf("xlen must be 32 or 64, got %d", c.XLEN))
	}
	if c.Harts < 1 {
		errs = append(errs, fmt.Errorf("need at least one hart, got %d", c.Harts))
	}
	if _, err := c.abi(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.floatABI(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.logOptions(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) abi() (riscv.ABI, error) {
	switch strings.ToLower(c.ABI) {
	case "standard", "":
		return riscv.ABIStandard, nil
	case "reduced":
		return riscv.ABIReduced, nil
	}
	return 0, fmt.Errorf("unknown abi %q", c.ABI)
}

func (c Config) floatABI() (riscv.FloatABI, error) {
	switch strings.ToLower(c.FloatABI) {
	case "soft":
		return riscv.FloatABISoft, nil
	case "single":
		return riscv.FloatABISingle, nil
	case "double", "":
		return riscv.FloatABIDouble, nil
	case "quad":
		return riscv.FloatABIQuad, nil
	}
	return 0, fmt.Errorf("unknown float abi %q", c.FloatABI)
}

func (c Config) logOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.Options{}, fmt.Errorf("log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	typ, err := log.ParseLoggerType(c.LogType)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{LogLevel: level, Type: typ}, nil
}
