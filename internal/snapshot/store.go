package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eigerco/rvsim/pkg/db"
)

var ErrNoSnapshot = errors.New("no snapshot stored for hart")

// prefixSnapshot namespaces snapshot keys inside a shared store
const prefixSnapshot byte = 's'

// Store keeps snapshots keyed by hart id and step count. Keys sort by hart
// then step, so one hart's snapshots form a contiguous range.
type Store struct {
	kv db.KVStore
}

func NewStore(kv db.KVStore) *Store {
	return &Store{kv: kv}
}

func key(hart, step uint64) []byte {
	k := make([]byte, 0, 17)
	k = append(k, prefixSnapshot)
	k = binary.BigEndian.AppendUint64(k, hart)
	return binary.BigEndian.AppendUint64(k, step)
}

// hartRange the [start, end) key range covering every step of a hart
func hartRange(hart uint64) ([]byte, []byte) {
	start := key(hart, 0)
	if hart == ^uint64(0) {
		return start, []byte{prefixSnapshot + 1}
	}
	return start, key(hart+1, 0)
}

func (s *Store) Save(hart, step uint64, snap *Snapshot) error {
	if err := s.kv.Put(key(hart, step), snap.Encode()); err != nil {
		return fmt.Errorf("save snapshot of hart %d at step %d: %w", hart, step, err)
	}
	return nil
}

// SaveAll stores one snapshot per hart at the same step, all or nothing
func (s *Store) SaveAll(step uint64, snaps []*Snapshot) (err error) {
	batch := s.kv.NewBatch()
	defer func() {
		if closeErr := batch.Close(); err == nil {
			err = closeErr
		}
	}()
	for hart, snap := range snaps {
		if err := batch.Put(key(uint64(hart), step), snap.Encode()); err != nil {
			return fmt.Errorf("save snapshot of hart %d at step %d: %w", hart, step, err)
		}
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit snapshots at step %d: %w", step, err)
	}
	return nil
}

func (s *Store) Load(hart, step uint64) (*Snapshot, error) {
	b, err := s.kv.Get(key(hart, step))
	if err != nil {
		return nil, fmt.Errorf("load snapshot of hart %d at step %d: %w", hart, step, err)
	}
	return Decode(b)
}

// Steps lists the steps a hart has snapshots for, ascending
func (s *Store) Steps(hart uint64) (steps []uint64, err error) {
	start, end := hartRange(hart)
	it, err := s.kv.NewIterator(start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := it.Close(); err == nil {
			err = closeErr
		}
	}()
	for it.Next() {
		steps = append(steps, binary.BigEndian.Uint64(it.Key()[9:]))
	}
	return steps, nil
}

// Latest the snapshot with the highest step for a hart
func (s *Store) Latest(hart uint64) (uint64, *Snapshot, error) {
	steps, err := s.Steps(hart)
	if err != nil {
		return 0, nil, err
	}
	if len(steps) == 0 {
		return 0, nil, fmt.Errorf("%w %d", ErrNoSnapshot, hart)
	}
	step := steps[len(steps)-1]
	snap, err := s.Load(hart, step)
	return step, snap, err
}

// Prune drops every snapshot of a hart older than step
func (s *Store) Prune(hart, step uint64) (err error) {
	steps, err := s.Steps(hart)
	if err != nil {
		return err
	}
	batch := s.kv.NewBatch()
	defer func() {
		if closeErr := batch.Close(); err == nil {
			err = closeErr
		}
	}()
	for _, st := range steps {
		if st >= step {
			break
		}
		if err := batch.Delete(key(hart, st)); err != nil {
			return err
		}
	}
	return batch.Commit()
}
