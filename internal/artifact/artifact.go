// Package artifact loads the numeric arrays the simulation stage serializes
// into the scratch workspace. Filenames and shapes are fixed by the stage
// contract: three 1-D activity sample series and two N×2 (time, value)
// series.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"bridge-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

// Fixed filenames written by the simulation stage.
const (
	FileBroadcast  = "sc_broadcast_activity.pkl"
	FileDispatch   = "sc_dispatch_activity.pkl"
	FileDiscard    = "sc_discard_activity.pkl"
	FileLatency    = "sc_latency.pkl"
	FileCongestion = "sc_congestion.pkl"
)

// Set holds one trial's deserialized measurement arrays.
type Set struct {
	Broadcast  []float64
	Dispatch   []float64
	Discard    []float64
	Latency    [][2]float64
	Congestion [][2]float64
}

// MissingError reports an expected artifact file that is absent from the
// workspace.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("artifact %s is missing", e.Name)
}

// CorruptError reports an artifact file that exists but could not be decoded
// into its expected shape.
type CorruptError struct {
	Name string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("artifact %s is corrupt: %v", e.Name, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Load reads all five artifacts from dir. It is a pure read: the workspace is
// not modified. All five must decode successfully; the first missing or
// undecodable file aborts the load.
func Load(dir string) (*Set, error) {
	logger := logging.GetLogger()

	set := &Set{}
	var err error

	if set.Broadcast, err = loadSamples(dir, FileBroadcast); err != nil {
		return nil, err
	}
	if set.Dispatch, err = loadSamples(dir, FileDispatch); err != nil {
		return nil, err
	}
	if set.Discard, err = loadSamples(dir, FileDiscard); err != nil {
		return nil, err
	}
	if set.Latency, err = loadPairs(dir, FileLatency); err != nil {
		return nil, err
	}
	if set.Congestion, err = loadPairs(dir, FileCongestion); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"broadcast":  len(set.Broadcast),
		"dispatch":   len(set.Dispatch),
		"discard":    len(set.Discard),
		"latency":    len(set.Latency),
		"congestion": len(set.Congestion),
	}).Debug("Artifacts loaded")

	return set, nil
}

func loadSamples(dir, name string) ([]float64, error) {
	value, err := loadPickle(dir, name)
	if err != nil {
		return nil, err
	}
	samples, err := decodeSamples(value)
	if err != nil {
		return nil, &CorruptError{Name: name, Err: err}
	}
	return samples, nil
}

func loadPairs(dir, name string) ([][2]float64, error) {
	value, err := loadPickle(dir, name)
	if err != nil {
		return nil, err
	}
	pairs, err := decodePairs(value)
	if err != nil {
		return nil, &CorruptError{Name: name, Err: err}
	}
	return pairs, nil
}

func loadPickle(dir, name string) (interface{}, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingError{Name: name}
		}
		return nil, &CorruptError{Name: name, Err: err}
	}

	value, err := unpickleFile(path)
	if err != nil {
		return nil, &CorruptError{Name: name, Err: err}
	}
	return value, nil
}
