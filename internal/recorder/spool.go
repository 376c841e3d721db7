package recorder

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSpoolDir resolves the spool directory, honoring the environment
// override.
func DefaultSpoolDir() string {
	if v := strings.TrimSpace(os.Getenv("BRIDGE_BENCH_SPOOL_DIR")); v != "" {
		return v
	}
	return "spool"
}

// WriteSpoolArtifact writes a gzip-compressed JSON summary to disk
// atomically. It returns the final file path.
func WriteSpoolArtifact(dir string, summary *TrialSummary) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("trial summary is nil")
	}
	if dir == "" {
		dir = DefaultSpoolDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	// The run ID contains '#', which is awkward in shells; flatten it.
	name := fmt.Sprintf(
		"trial_%s_%d.json.gz",
		strings.ReplaceAll(summary.RunID, "#", "_"),
		summary.Trial,
	)
	finalPath := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

// ReadSpoolArtifact loads a spooled summary back, for tests and manual
// recovery tooling.
func ReadSpoolArtifact(path string) (*TrialSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var summary TrialSummary
	if err := json.NewDecoder(gz).Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
