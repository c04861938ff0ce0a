package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mediaprobe/internal/services"
)

// maxLineBytes bounds a single report line. Tag values such as embedded
// lyrics can run far past bufio's default.
const maxLineBytes = 1 << 20

// Prober returns the raw report lines for one file.
type Prober interface {
	Probe(ctx context.Context, path string) ([]string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a client. A zero timeout disables the per-probe deadline.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "init", "ffmpeg binary required", nil)
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

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Probe runs `ffmpeg -hide_banner -i path` and returns every printed line.
func (c *Client) Probe(ctx context.Context, path string) ([]string, error) {
	lines, err := c.run(ctx, "probe", []string{"-hide_banner", "-i", path})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Version returns the first line of `ffmpeg -version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	lines, err := c.run(ctx, "version", []string{"-version"})
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", services.Wrap(services.ErrNoData, "ffmpeg", "version", "empty version output", nil)
	}
	return strings.TrimSpace(lines[0]), nil
}

func (c *Client) run(ctx context.Context, operation string, args []string) ([]string, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var lines []string
	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		lines = append(lines, line)
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, services.Wrap(services.ErrTimeout, "ffmpeg", operation, fmt.Sprintf("no result after %s", c.timeout), err)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(lines) > 0 {
			return lines, nil
		}
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", operation, "run "+c.binary, err)
	}
	return lines, nil
}

type commandExecutor struct{}

// Run merges stdout and stderr into one pipe so lines keep their order.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
