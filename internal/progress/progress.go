// Package progress provides harness observers for terminal and log output.
package progress

import (
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"bridge-bench/internal/harness"
	"bridge-bench/internal/logging"
)

// BarObserver renders a terminal progress bar whose description follows the
// current trial phase.
type BarObserver struct {
	bar *progressbar.ProgressBar
}

func NewBarObserver(total int) *BarObserver {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(""),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	return &BarObserver{bar: bar}
}

func (o *BarObserver) PhaseChanged(_ int, phase harness.Phase) {
	o.bar.Describe(string(phase))
}

func (o *BarObserver) TrialCompleted(done, total int) {
	_ = o.bar.Add(1)
}

func (o *BarObserver) Finish() {
	_ = o.bar.Finish()
}

// LogObserver reports progress through the structured logger, for
// non-interactive runs.
type LogObserver struct{}

func (LogObserver) PhaseChanged(trial int, phase harness.Phase) {
	logging.GetLogger().WithFields(logrus.Fields{
		"trial": trial,
		"phase": phase,
	}).Debug("Phase changed")
}

func (LogObserver) TrialCompleted(done, total int) {
	logging.GetLogger().WithFields(logrus.Fields{
		"completed": done,
		"total":     total,
	}).Info("Trial completed")
}

func (LogObserver) Finish() {}
