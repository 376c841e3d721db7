// Package stage invokes the external generation and simulation executables.
// The stages exchange no data with the harness beyond the scratch workspace
// they run in: generate populates it, simulate consumes that output and
// writes the measurement artifacts.
package stage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"bridge-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

type Stage string

const (
	Generate Stage = "generate"
	Simulate Stage = "simulate"
)

// Failure reports a stage process that terminated with a non-zero exit code.
type Failure struct {
	Stage    Stage
	ExitCode int
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("stage %s failed with exit code %d", f.Stage, f.ExitCode)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Runner executes one named stage to completion against a workspace
// directory. Implementations block until the process terminates.
type Runner interface {
	Run(ctx context.Context, s Stage, workdir string) error
}

// ExecRunner runs stages as host processes. The workspace is passed as the
// process working directory; the command line itself carries no arguments
// about it.
type ExecRunner struct {
	Commands map[Stage]string
}

func NewExecRunner(generate, simulate string) *ExecRunner {
	return &ExecRunner{
		Commands: map[Stage]string{
			Generate: generate,
			Simulate: simulate,
		},
	}
}

func (r *ExecRunner) Run(ctx context.Context, s Stage, workdir string) error {
	logger := logging.GetLogger()

	command, ok := r.Commands[s]
	if ok {
		command = strings.TrimSpace(command)
	}
	if command == "" {
		return &Failure{Stage: s, ExitCode: -1, Err: fmt.Errorf("no command configured for stage %s", s)}
	}

	parts := strings.Fields(command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = workdir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.WithFields(logrus.Fields{
		"stage":   s,
		"command": command,
		"workdir": workdir,
	}).Debug("Starting stage process")

	// No timeout is applied here: a hanging stage blocks the run until the
	// surrounding context is cancelled.
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &Failure{Stage: s, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &Failure{Stage: s, ExitCode: -1, Err: err}
	}

	return nil
}
