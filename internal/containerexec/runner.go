package containerexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// Runner executes a command inside a named container and reports its stdout
// and exit code. The error return is reserved for failures to run the command
// at all; a non-zero exit from the command itself is not an error here, the
// caller classifies it.
type Runner interface {
	Exec(ctx context.Context, container string, command ...string) (stdout string, exitCode int, err error)
}

// CLIRunner shells out to a container runtime binary (docker or podman).
type CLIRunner struct {
	// Binary is the runtime executable. Defaults to "docker".
	Binary string
}

var _ Runner = (*CLIRunner)(nil)

// NewCLIRunner constructs a runner for the given runtime binary.
func NewCLIRunner(binary string) *CLIRunner {
	if binary == "" {
		binary = "docker"
	}
	return &CLIRunner{Binary: binary}
}

// Exec runs `<binary> exec <container> <command...>`.
func (r *CLIRunner) Exec(ctx context.Context, container string, command ...string) (string, int, error) {
	if container == "" {
		return "", 0, n8nerrors.NewValidationError("container", "container name cannot be empty", nil)
	}
	if len(command) == 0 {
		return "", 0, n8nerrors.NewValidationError("command", "command cannot be empty", nil)
	}

	args := append([]string{"exec", container}, command...)
	cmd := exec.CommandContext(ctx, r.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			combined := strings.TrimSpace(stderr.String())
			if combined == "" {
				combined = strings.TrimSpace(stdout.String())
			}
			return combined, exitErr.ExitCode(), nil
		}
		return "", 0, fmt.Errorf("run %s: %w", r.Binary, err)
	}

	return stdout.String(), 0, nil
}
