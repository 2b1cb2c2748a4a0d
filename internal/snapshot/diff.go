package snapshot

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff a unified diff between the dumps of two snapshots, empty when they
// hold the same state
func Diff(a, b *Snapshot, fromName, toName string) (string, error) {
	d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.Dump()),
		B:        difflib.SplitLines(b.Dump()),
		FromFile: fromName,
		ToFile:   toName,
		Context:  1,
	})
	if err != nil {
		return "", fmt.Errorf("diff snapshots: %w", err)
	}
	return d, nil
}
