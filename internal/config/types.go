package config

// Trial-failure policies. AbortRun reproduces the original harness behavior
// where the first failed trial terminates the whole run.
const (
	OnErrorAbortRun  = "abort_run"
	OnErrorSkipTrial = "skip_trial"
)

// DefaultTrials is used when the config omits the trial count.
const DefaultTrials = 20

type ExperimentConfig struct {
	Experiment ExperimentInfo `yaml:"experiment"`
}

type ExperimentInfo struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	Trials       *int           `yaml:"trials"`
	ScratchDir   string         `yaml:"scratch_dir"`
	ArchiveRoot  string         `yaml:"archive_root"`
	OnTrialError string         `yaml:"on_trial_error"`
	LogLevel     string         `yaml:"log_level"`
	Stages       StagesConfig   `yaml:"stages"`
	Recorder     RecorderConfig `yaml:"recorder"`
}

type StagesConfig struct {
	Generate string `yaml:"generate"`
	Simulate string `yaml:"simulate"`
}

type RecorderConfig struct {
	Enabled  bool           `yaml:"enabled"`
	SpoolDir string         `yaml:"spool_dir,omitempty"`
	DB       DatabaseConfig `yaml:"db"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Org      string `yaml:"org"`
}

// GetTrials returns the configured trial count, defaulting when omitted.
// An explicit zero is honored: the run performs no trials.
func (c *ExperimentConfig) GetTrials() int {
	if c.Experiment.Trials == nil {
		return DefaultTrials
	}
	return *c.Experiment.Trials
}

func (c *ExperimentConfig) GetOnTrialError() string {
	if c.Experiment.OnTrialError == "" {
		return OnErrorAbortRun
	}
	return c.Experiment.OnTrialError
}

// UsesDatabase reports whether the recorder should export to InfluxDB in
// addition to spooling.
func (r *RecorderConfig) UsesDatabase() bool {
	return r.Enabled && r.DB.Host != ""
}
