package recorder

import (
	"context"
	"fmt"
	"time"

	"bridge-bench/internal/config"
	"bridge-bench/internal/logging"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// InfluxRecorder writes trial summaries to InfluxDB, spooling any summary
// that fails to export so it can be replayed later.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	spoolDir string
}

func NewInfluxRecorder(cfg config.RecorderConfig) (*InfluxRecorder, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.DB.Host, cfg.DB.Password)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("host", cfg.DB.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, err
	}
	if health.Status != "pass" {
		logger.WithFields(logrus.Fields{
			"host":   cfg.DB.Host,
			"status": health.Status,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health check failed: %s", health.Status)
	}

	logger.WithFields(logrus.Fields{
		"host":   cfg.DB.Host,
		"bucket": cfg.DB.Name,
		"org":    cfg.DB.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.DB.Org, cfg.DB.Name),
		spoolDir: cfg.SpoolDir,
	}, nil
}

func (r *InfluxRecorder) RecordTrial(ctx context.Context, summary *TrialSummary) error {
	logger := logging.GetLogger()

	fields := map[string]interface{}{
		"broadcast_samples": summary.BroadcastSamples,
		"dispatch_samples":  summary.DispatchSamples,
		"discard_samples":   summary.DiscardSamples,
		"latency_points":    summary.LatencyPoints,
		"congestion_points": summary.CongestionPoints,
		"duration_seconds":  summary.EndTime.Sub(summary.StartTime).Seconds(),
	}
	for phase, seconds := range summary.PhaseSeconds {
		fields[phase+"_seconds"] = seconds
	}

	point := influxdb2.NewPoint("trial_summary",
		map[string]string{
			"experiment": summary.Experiment,
			"trial":      fmt.Sprintf("%d", summary.Trial),
			"run_id":     summary.RunID,
		},
		fields,
		summary.EndTime)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		logger.WithField("run_id", summary.RunID).WithError(err).Warn("InfluxDB write failed, spooling summary")
		path, spoolErr := WriteSpoolArtifact(r.spoolDir, summary)
		if spoolErr != nil {
			return fmt.Errorf("write failed (%v) and spool failed: %w", err, spoolErr)
		}
		logger.WithField("path", path).Info("Trial summary spooled")
	}

	return nil
}

func (r *InfluxRecorder) Close() {
	r.client.Close()
}

// SpoolRecorder persists every summary to the spool directory. It serves as
// the recorder when no database is configured.
type SpoolRecorder struct {
	Dir string
}

func (r *SpoolRecorder) RecordTrial(_ context.Context, summary *TrialSummary) error {
	logger := logging.GetLogger()
	path, err := WriteSpoolArtifact(r.Dir, summary)
	if err != nil {
		return err
	}
	logger.WithField("path", path).Debug("Trial summary spooled")
	return nil
}

func (r *SpoolRecorder) Close() {}
