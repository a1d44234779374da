package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts executing the git binary so tests can replay output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner executes the configured git binary.
type ExecRunner struct {
	GitBin string
}

func NewExecRunner(gitBin string) *ExecRunner {
	if strings.TrimSpace(gitBin) == "" {
		gitBin = "git"
	}
	return &ExecRunner{GitBin: gitBin}
}

func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.GitBin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		re := &RunError{Subcommand: subcommand(args), Stderr: strings.TrimSpace(errb.String()), ExitCode: -1, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			re.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			re.Err = ctxErr
		}
		return "", re
	}
	return out.String(), nil
}

// RunError reports a failed git invocation.
type RunError struct {
	Subcommand string
	Stderr     string
	// ExitCode is -1 when git never ran or was killed.
	ExitCode int
	Err      error
}

func (e *RunError) Error() string {
	msg := e.Stderr
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", e.Subcommand, msg)
}

func (e *RunError) Unwrap() error { return e.Err }

// silentExit reports a plain non-zero status with nothing on stderr,
// which is how `rev-parse --verify -q` says the name does not resolve.
func silentExit(err error) bool {
	var re *RunError
	return errors.As(err, &re) && re.ExitCode == 1 && re.Stderr == ""
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return "<no-args>"
	}
	return args[0]
}
