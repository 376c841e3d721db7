package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridge-bench/internal/archive"
	"bridge-bench/internal/config"
	"bridge-bench/internal/harness"
	"bridge-bench/internal/logging"
	"bridge-bench/internal/progress"
	"bridge-bench/internal/recorder"
	"bridge-bench/internal/stage"
	"bridge-bench/internal/visual"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func Execute() error {
	var configFile string
	var noProgress bool
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "bridge-bench",
		Short:   "Bridge simulation experiment harness",
		Long:    "Drives the external generate/simulate pipeline for a configured number of trials, plots each trial's measurements and archives the results",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(configFile, noProgress)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an experiment configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(configFile)
		},
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to experiment configuration file")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Report progress through the logger instead of a progress bar")
	runCmd.MarkFlagRequired("config")

	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to experiment configuration file")
	validateCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)

	return rootCmd.Execute()
}

func validateConfig(configFile string) error {
	logger := logging.GetLogger()

	_, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	logger.WithField("config_file", configFile).Info("Configuration is valid")
	return nil
}

func runExperiment(configFile string, noProgress bool) error {
	logger := logging.GetLogger()

	config.LoadDotEnv()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Failed to load configuration")
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Experiment.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.Experiment.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Experiment.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
			logging.SetLogLevel("info")
		}
	}

	if _, err := os.Stat(cfg.Experiment.ScratchDir); err != nil {
		logger.WithField("scratch_dir", cfg.Experiment.ScratchDir).WithError(err).Error("Scratch directory is not accessible")
		return fmt.Errorf("scratch directory %s: %w", cfg.Experiment.ScratchDir, err)
	}

	runner := stage.NewExecRunner(cfg.Experiment.Stages.Generate, cfg.Experiment.Stages.Simulate)
	committer := archive.NewCommitter(cfg.Experiment.ArchiveRoot)

	var observer harness.Observer
	if noProgress {
		observer = progress.LogObserver{}
	} else {
		observer = progress.NewBarObserver(cfg.GetTrials())
	}

	h := harness.New(cfg, runner, visual.NewBuilder(), committer, observer)

	if cfg.Experiment.Recorder.Enabled {
		rec, err := newRecorder(cfg)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize recorder")
			return fmt.Errorf("failed to initialize recorder: %w", err)
		}
		defer rec.Close()
		h.SetRecorder(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := h.Run(ctx); err != nil {
		logger.WithError(err).Error("Experiment failed")
		return fmt.Errorf("experiment failed: %w", err)
	}

	logger.Info("Experiment completed successfully")
	return nil
}

func newRecorder(cfg *config.ExperimentConfig) (recorder.Recorder, error) {
	if cfg.Experiment.Recorder.UsesDatabase() {
		return recorder.NewInfluxRecorder(cfg.Experiment.Recorder)
	}
	return &recorder.SpoolRecorder{Dir: cfg.Experiment.Recorder.SpoolDir}, nil
}
