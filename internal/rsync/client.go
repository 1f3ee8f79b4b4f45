package rsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"rcsarchive/internal/services"
)

// Options selects the orthogonal rsync modes for one copy.
type Options struct {
	DryRun            bool
	RemoveSourceFiles bool
}

// Report is the captured result of a successful copy.
type Report struct {
	Command []string
	Output  string
}

// CommandLine renders the invoked command for logs.
func (r Report) CommandLine() string {
	return strings.Join(r.Command, " ")
}

// Copier performs one directory copy. The Mover depends on this rather than on
// Client.
type Copier interface {
	Copy(ctx context.Context, src, dst string, opts Options) (Report, error)
}

// Result is what an Executor captured from one process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// ExitError describes rsync terminating with a non-zero status.
type ExitError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("rsync exited with status %d", e.ExitCode)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps rsync CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs an rsync client. A timeout of zero lets rsync run until it
// exits.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rsync binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Args builds the rsync argument list. The source gets a trailing slash so its
// contents, not the directory itself, land in dst.
func Args(src, dst string, opts Options) []string {
	args := []string{"-avc"}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.RemoveSourceFiles {
		args = append(args, "--remove-source-files")
	}
	return append(args, strings.TrimRight(src, "/")+"/", dst)
}

// Copy runs rsync once. A non-zero exit is returned as *ExitError tagged with
// services.ErrExternalTool.
func (c *Client) Copy(ctx context.Context, src, dst string, opts Options) (Report, error) {
	if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
		return Report{}, services.Wrap(services.ErrValidation, "rsync", "copy", "source and destination required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := Args(src, dst, opts)
	command := append([]string{c.binary}, args...)

	result, err := c.exec.Run(runCtx, c.binary, args)
	if err == nil && result.ExitCode == 0 {
		return Report{Command: command, Output: strings.TrimSpace(result.Stdout)}, nil
	}

	exitErr := &ExitError{
		Command:  command,
		ExitCode: result.ExitCode,
		Stdout:   strings.TrimSpace(result.Stdout),
		Stderr:   strings.TrimSpace(result.Stderr),
	}
	if exitErr.ExitCode == 0 {
		exitErr.ExitCode = -1
	}
	if err == nil {
		err = exitErr
	} else {
		err = errors.Join(exitErr, err)
	}
	return Report{Command: command, Output: exitErr.Stdout}, services.Wrap(services.ErrExternalTool, "rsync", "copy", src, err)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", binary, err)
	}
	return result, nil
}
