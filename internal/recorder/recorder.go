// Package recorder exports per-trial summaries for later analysis. Summaries
// go to InfluxDB when a database is configured; when the database is absent
// or a write fails, they are spooled to disk as gzip-compressed JSON so no
// trial record is lost.
package recorder

import (
	"context"
	"time"
)

// TrialSummary is the per-trial record exported after a successful archive
// commit.
type TrialSummary struct {
	Experiment string `json:"experiment"`
	Trial      int    `json:"trial"`
	RunID      string `json:"run_id"`

	BroadcastSamples int `json:"broadcast_samples"`
	DispatchSamples  int `json:"dispatch_samples"`
	DiscardSamples   int `json:"discard_samples"`
	LatencyPoints    int `json:"latency_points"`
	CongestionPoints int `json:"congestion_points"`

	PhaseSeconds map[string]float64 `json:"phase_seconds"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Recorder persists trial summaries.
type Recorder interface {
	RecordTrial(ctx context.Context, summary *TrialSummary) error
	Close()
}
