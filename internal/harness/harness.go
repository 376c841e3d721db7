// Package harness drives the experiment: for each trial it resets the
// scratch workspace, runs the two external stages, loads the measurement
// artifacts, renders the summary plots and commits them to the archive.
// Trials are strictly sequential; the scratch workspace is owned by exactly
// one trial at a time.
package harness

import (
	"context"
	"fmt"
	"time"

	"bridge-bench/internal/archive"
	"bridge-bench/internal/artifact"
	"bridge-bench/internal/config"
	"bridge-bench/internal/logging"
	"bridge-bench/internal/recorder"
	"bridge-bench/internal/stage"
	"bridge-bench/internal/visual"
	"bridge-bench/internal/workspace"

	"github.com/sirupsen/logrus"
)

// Phase labels reported to the observer before each trial step.
type Phase string

const (
	PhaseResetting  Phase = "resetting"
	PhaseGenerating Phase = "generating"
	PhaseSimulating Phase = "simulating"
	PhaseReading    Phase = "reading"
	PhasePlotting   Phase = "plotting"
	PhaseSaving     Phase = "saving"
)

// Observer receives progress notifications. The harness has no output-device
// dependency of its own.
type Observer interface {
	PhaseChanged(trial int, phase Phase)
	TrialCompleted(done, total int)
	Finish()
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) PhaseChanged(int, Phase) {}

func (NopObserver) TrialCompleted(int, int) {}

func (NopObserver) Finish() {}

// Plotter renders the summary plots for one artifact set into a directory.
type Plotter interface {
	Render(set *artifact.Set, dir string) error
}

// Harness executes a configured number of trials end to end.
type Harness struct {
	cfg       *config.ExperimentConfig
	runner    stage.Runner
	plotter   Plotter
	committer *archive.Committer
	observer  Observer
	recorder  recorder.Recorder

	// loadFn is the artifact loader, replaceable in tests.
	loadFn func(dir string) (*artifact.Set, error)
}

func New(cfg *config.ExperimentConfig, runner stage.Runner, plotter Plotter, committer *archive.Committer, observer Observer) *Harness {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Harness{
		cfg:       cfg,
		runner:    runner,
		plotter:   plotter,
		committer: committer,
		observer:  observer,
		loadFn:    artifact.Load,
	}
}

// SetRecorder attaches an optional trial-summary recorder. Recorder failures
// are logged, never fatal: export is advisory, unlike archival.
func (h *Harness) SetRecorder(r recorder.Recorder) {
	h.recorder = r
}

// Run executes trials 0..N-1. Under the abort_run policy the first trial
// failure terminates the run with that error; under skip_trial failed trials
// are logged and the remaining trials still execute.
func (h *Harness) Run(ctx context.Context) error {
	logger := logging.GetLogger()
	defer h.observer.Finish()

	total := h.cfg.GetTrials()
	policy := h.cfg.GetOnTrialError()
	scratch := h.cfg.Experiment.ScratchDir

	logger.WithFields(logrus.Fields{
		"experiment":     h.cfg.Experiment.Name,
		"trials":         total,
		"scratch_dir":    scratch,
		"archive_root":   h.committer.Root,
		"on_trial_error": policy,
	}).Info("Starting experiment run")

	failed := 0
	for trial := 0; trial < total; trial++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before trial %d: %w", trial, err)
		}

		start := time.Now()
		runID, err := h.runTrial(ctx, trial, scratch)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"trial": trial,
			}).WithError(err).Error("Trial failed")

			if policy == config.OnErrorAbortRun {
				return fmt.Errorf("trial %d: %w", trial, err)
			}
			failed++
			continue
		}

		logger.WithFields(logrus.Fields{
			"trial":    trial,
			"run_id":   runID,
			"duration": time.Since(start),
		}).Info("Trial archived")

		h.observer.TrialCompleted(trial+1, total)
	}

	if failed > 0 {
		logger.WithFields(logrus.Fields{
			"failed": failed,
			"total":  total,
		}).Warn("Run finished with skipped trials")
	}
	return nil
}

// runTrial executes one full reset→stages→load→plot→archive cycle and
// returns the run identifier of the archive entry.
func (h *Harness) runTrial(ctx context.Context, trial int, scratch string) (string, error) {
	logger := logging.GetLogger()
	durations := make(map[Phase]time.Duration, 6)
	started := time.Now()

	step := func(phase Phase, fn func() error) error {
		h.observer.PhaseChanged(trial, phase)
		begin := time.Now()
		err := fn()
		durations[phase] = time.Since(begin)
		return err
	}

	if err := step(PhaseResetting, func() error {
		return workspace.Reset(scratch)
	}); err != nil {
		return "", err
	}

	if err := step(PhaseGenerating, func() error {
		return h.runner.Run(ctx, stage.Generate, scratch)
	}); err != nil {
		return "", err
	}

	// Simulation consumes generation's output; it is only reached when
	// generation succeeded.
	if err := step(PhaseSimulating, func() error {
		return h.runner.Run(ctx, stage.Simulate, scratch)
	}); err != nil {
		return "", err
	}

	var set *artifact.Set
	if err := step(PhaseReading, func() error {
		var err error
		set, err = h.loadFn(scratch)
		return err
	}); err != nil {
		return "", err
	}

	if err := step(PhasePlotting, func() error {
		return h.plotter.Render(set, scratch)
	}); err != nil {
		return "", err
	}

	var runID string
	if err := step(PhaseSaving, func() error {
		var err error
		runID, err = h.committer.Commit(scratch, trial, visual.PlotFiles())
		return err
	}); err != nil {
		return "", err
	}

	// The archive entry is complete at this point; sweep the stage artifacts
	// out of the workspace so it ends the trial empty. Best effort: a failed
	// sweep does not invalidate the archived trial.
	if err := workspace.Reset(scratch); err != nil {
		logger.WithField("trial", trial).WithError(err).Warn("Failed to sweep workspace after archival")
	}

	if h.recorder != nil {
		summary := buildSummary(h.cfg.Experiment.Name, trial, runID, set, durations, started)
		if err := h.recorder.RecordTrial(ctx, summary); err != nil {
			logger.WithField("trial", trial).WithError(err).Warn("Failed to record trial summary")
		}
	}

	return runID, nil
}

func buildSummary(experiment string, trial int, runID string, set *artifact.Set, durations map[Phase]time.Duration, started time.Time) *recorder.TrialSummary {
	phaseSeconds := make(map[string]float64, len(durations))
	for phase, d := range durations {
		phaseSeconds[string(phase)] = d.Seconds()
	}

	return &recorder.TrialSummary{
		Experiment:       experiment,
		Trial:            trial,
		RunID:            runID,
		BroadcastSamples: len(set.Broadcast),
		DispatchSamples:  len(set.Dispatch),
		DiscardSamples:   len(set.Discard),
		LatencyPoints:    len(set.Latency),
		CongestionPoints: len(set.Congestion),
		PhaseSeconds:     phaseSeconds,
		StartTime:        started,
		EndTime:          time.Now(),
	}
}
