package artifact

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pickleSamples builds a protocol-0 pickle of a flat list of numbers.
func pickleSamples(vals []float64) []byte {
	var b strings.Builder
	b.WriteString("(l")
	for _, v := range vals {
		fmt.Fprintf(&b, "F%v\na", v)
	}
	b.WriteString(".")
	return []byte(b.String())
}

// picklePairs builds a protocol-0 pickle of a list of two-element int lists.
func picklePairs(rows [][2]int) []byte {
	var b strings.Builder
	b.WriteString("(l")
	for _, row := range rows {
		fmt.Fprintf(&b, "(lI%d\naI%d\naa", row[0], row[1])
	}
	b.WriteString(".")
	return []byte(b.String())
}

func writeArtifacts(t *testing.T, dir string) {
	t.Helper()
	fixtures := map[string][]byte{
		FileBroadcast:  pickleSamples([]float64{0.1, 0.2, 0.1}),
		FileDispatch:   pickleSamples([]float64{0.3}),
		FileDiscard:    pickleSamples(nil),
		FileLatency:    picklePairs([][2]int{{0, 5}, {1, 7}}),
		FileCongestion: picklePairs([][2]int{{0, 2}, {1, 3}}),
	}
	for name, data := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestLoad_FullSet(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantBroadcast := []float64{0.1, 0.2, 0.1}
	if len(set.Broadcast) != len(wantBroadcast) {
		t.Fatalf("broadcast length %d, want %d", len(set.Broadcast), len(wantBroadcast))
	}
	for i, v := range wantBroadcast {
		if math.Abs(set.Broadcast[i]-v) > 1e-12 {
			t.Fatalf("broadcast[%d] = %v, want %v", i, set.Broadcast[i], v)
		}
	}
	if len(set.Dispatch) != 1 || set.Dispatch[0] != 0.3 {
		t.Fatalf("dispatch = %v, want [0.3]", set.Dispatch)
	}
	if len(set.Discard) != 0 {
		t.Fatalf("discard = %v, want empty", set.Discard)
	}
	if len(set.Latency) != 2 || set.Latency[1] != [2]float64{1, 7} {
		t.Fatalf("latency = %v", set.Latency)
	}
	if len(set.Congestion) != 2 || set.Congestion[0] != [2]float64{0, 2} {
		t.Fatalf("congestion = %v", set.Congestion)
	}
}

func TestLoad_MissingFileNamesIt(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	if err := os.Remove(filepath.Join(dir, FileDispatch)); err != nil {
		t.Fatalf("removing fixture: %v", err)
	}

	_, err := Load(dir)
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if missing.Name != FileDispatch {
		t.Fatalf("missing artifact %q, want %q", missing.Name, FileDispatch)
	}
}

func TestLoad_CorruptFileNamesIt(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	if err := os.WriteFile(filepath.Join(dir, FileLatency), []byte("not a pickle"), 0o644); err != nil {
		t.Fatalf("writing corrupt fixture: %v", err)
	}

	_, err := Load(dir)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Name != FileLatency {
		t.Fatalf("corrupt artifact %q, want %q", corrupt.Name, FileLatency)
	}
}

func TestLoad_WrongShapeIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	// Pair artifact with a three-column row.
	if err := os.WriteFile(filepath.Join(dir, FileCongestion), []byte("(l(lI0\naI1\naI2\naa."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Load(dir)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Name != FileCongestion {
		t.Fatalf("corrupt artifact %q, want %q", corrupt.Name, FileCongestion)
	}
}

func TestLoad_DoesNotMutateWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	if _, err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 artifact files after load, found %d", len(entries))
	}
}
