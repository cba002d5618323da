// Package gitops drives the git CLI to stage, commit, and push mirror
// changes. The repository is treated as an opaque command-runner; exit codes
// are the only failure signal.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes one git invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs git as a subprocess in Dir (empty = current directory).
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr != "" {
				detail = strings.TrimSpace(detail + "\n" + stderr)
			}
		}
		if detail == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %s: %w", args[0], detail, err)
	}
	return strings.TrimSpace(string(output)), nil
}
