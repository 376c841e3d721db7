// Package workspace owns the per-trial scratch directory. Every trial starts
// from an empty workspace; the external stages and the plot renderer write
// only plain files into it, never subdirectories.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResetError reports a failure to bring the scratch directory back to its
// known-empty state.
type ResetError struct {
	Dir string
	Err error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("failed to reset workspace %s: %v", e.Dir, e.Err)
}

func (e *ResetError) Unwrap() error {
	return e.Err
}

// Reset removes every file directly inside dir, leaving dir itself in place.
// A subdirectory entry is treated as an error rather than removed: nothing in
// the pipeline creates one, and removing it could reach outside the trial's
// state.
func Reset(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &ResetError{Dir: dir, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return &ResetError{Dir: dir, Err: fmt.Errorf("unexpected subdirectory %q", entry.Name())}
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return &ResetError{Dir: dir, Err: err}
		}
	}

	return nil
}
