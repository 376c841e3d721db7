package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bridge-bench/internal/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func LoadConfig(filepath string) (*ExperimentConfig, error) {
	config, _, err := LoadConfigWithContent(filepath)
	return config, err
}

func LoadConfigWithContent(filepath string) (*ExperimentConfig, string, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)

	// Expand environment variables
	expanded := expandEnvVars(originalContent)

	var config ExperimentConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}

	if err := validateConfig(&config); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	return &config, originalContent, nil
}

// LoadDotEnv loads a .env file from the working directory, falling back to
// the executable directory.
func LoadDotEnv() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
		return
	}

	if execPath, err := os.Executable(); err == nil {
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
			} else {
				logger.WithField("file", envFile).Debug("Loaded environment variables")
			}
		}
	}
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateConfig(config *ExperimentConfig) error {
	exp := &config.Experiment

	if exp.Name == "" {
		return fmt.Errorf("experiment name is required")
	}

	if exp.Trials != nil && *exp.Trials < 0 {
		return fmt.Errorf("trials must not be negative")
	}

	if exp.ScratchDir == "" {
		return fmt.Errorf("scratch_dir is required")
	}

	if exp.ArchiveRoot == "" {
		return fmt.Errorf("archive_root is required")
	}

	if exp.Stages.Generate == "" {
		return fmt.Errorf("stages.generate command is required")
	}

	if exp.Stages.Simulate == "" {
		return fmt.Errorf("stages.simulate command is required")
	}

	switch exp.OnTrialError {
	case "", OnErrorAbortRun, OnErrorSkipTrial:
	default:
		return fmt.Errorf("on_trial_error must be %q or %q, got %q",
			OnErrorAbortRun, OnErrorSkipTrial, exp.OnTrialError)
	}

	if exp.Recorder.UsesDatabase() {
		db := exp.Recorder.DB
		if db.Host == "" || db.Name == "" || db.User == "" || db.Password == "" || db.Org == "" {
			return fmt.Errorf("incomplete database configuration")
		}
	}

	return nil
}
