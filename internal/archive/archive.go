// Package archive commits a trial's plot files to durable storage under a
// unique, human-sortable run identifier. Archive entries are write-once:
// they are never merged, overwritten or deleted by the harness.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bridge-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

// Timestamp layout of the run identifier, second granularity,
// lexicographically sortable.
const timeLayout = "2006-01-02-15-04-05"

// CollisionError reports a run identifier whose archive directory already
// exists. The existing entry is left untouched.
type CollisionError struct {
	RunID string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("archive entry %s already exists", e.RunID)
}

// CommitError reports a failed move of plot files into the archive entry.
// Files moved before the failure stay where they landed; there is no
// rollback, the partial entry is left for diagnosis.
type CommitError struct {
	RunID string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit archive entry %s: %v", e.RunID, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Committer creates archive entries under Root. The clock is injectable for
// tests; a nil Now uses the wall clock.
type Committer struct {
	Root string
	Now  func() time.Time
}

func NewCommitter(root string) *Committer {
	return &Committer{Root: root}
}

// RunID computes the composite identifier for a trial: a second-granularity
// timestamp plus the trial index, which disambiguates same-second trials.
func (c *Committer) RunID(trial int) string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return fmt.Sprintf("%s#%d", now().Format(timeLayout), trial)
}

// Commit creates the archive directory for the trial and moves the named
// files out of the scratch workspace into it. It returns the run identifier
// of the new entry.
func (c *Committer) Commit(scratchDir string, trial int, files []string) (string, error) {
	logger := logging.GetLogger()

	runID := c.RunID(trial)
	entryDir := filepath.Join(c.Root, runID)

	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return "", &CommitError{RunID: runID, Err: err}
	}

	// Mkdir fails on an existing entry, which makes the collision check
	// atomic with the creation.
	if err := os.Mkdir(entryDir, 0o755); err != nil {
		if os.IsExist(err) {
			return "", &CollisionError{RunID: runID}
		}
		return "", &CommitError{RunID: runID, Err: err}
	}

	for _, name := range files {
		src := filepath.Join(scratchDir, name)
		dst := filepath.Join(entryDir, name)
		if err := os.Rename(src, dst); err != nil {
			return "", &CommitError{RunID: runID, Err: err}
		}
	}

	logger.WithFields(logrus.Fields{
		"run_id": runID,
		"files":  len(files),
	}).Debug("Archive entry committed")

	return runID, nil
}
