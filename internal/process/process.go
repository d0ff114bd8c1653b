// Package process asks running applications to quit before their bundle is
// removed.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

type Status int

const (
	NotRunning Status = iota
	Terminated
	Failed
)

func (s Status) String() string {
	switch s {
	case NotRunning:
		return "not running"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Target identifies the application to stop. BundlePath is preferred for
// finding processes; Name and BundleID address the application over
// AppleScript.
type Target struct {
	Name       string
	BundleID   string
	BundlePath string
}

type Outcome struct {
	Status Status
	PIDs   []int
	Err    error
}

// Controller terminates running instances of an application.
type Controller interface {
	Quit(ctx context.Context, target Target) Outcome
}

// Noop never touches running processes and always reports NotRunning.
type Noop struct{}

func (Noop) Quit(context.Context, Target) Outcome {
	return Outcome{Status: NotRunning}
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// MacController quits applications gracefully through AppleScript, falling
// back to SIGTERM for processes still alive after the wait.
type MacController struct {
	wait     time.Duration
	poll     time.Duration
	run      runFunc
	kill     func(pid int, sig unix.Signal) error
	logger   *slog.Logger
	cmdLimit time.Duration
}

func NewMacController(wait time.Duration, logger *slog.Logger) *MacController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MacController{
		wait:     wait,
		poll:     200 * time.Millisecond,
		run:      runCommand,
		kill:     unix.Kill,
		logger:   logger,
		cmdLimit: 30 * time.Second,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

func (c *MacController) Quit(ctx context.Context, target Target) Outcome {
	pids, err := c.find(ctx, target)
	if err != nil {
		return Outcome{Status: Failed, Err: err}
	}
	if len(pids) == 0 {
		return Outcome{Status: NotRunning}
	}
	c.logger.Debug("application is running", "name", target.Name, "pids", pids)

	if out, err := c.exec(ctx, "osascript", "-e", quitScript(target)); err != nil {
		c.logger.Debug("graceful quit failed", "name", target.Name, "error", err, "output", string(out))
	}
	remaining, _ := c.waitGone(ctx, target, c.wait, pids)
	if len(remaining) == 0 {
		return Outcome{Status: Terminated, PIDs: pids}
	}

	var errs []error
	for _, pid := range remaining {
		if err := c.kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}
	remaining, listErr := c.waitGone(ctx, target, c.wait, remaining)
	if len(remaining) > 0 {
		if listErr != nil {
			errs = append(errs, listErr)
		}
		errs = append(errs, fmt.Errorf("still running: %v", remaining))
		return Outcome{Status: Failed, PIDs: pids, Err: errors.Join(errs...)}
	}
	return Outcome{Status: Terminated, PIDs: pids}
}

// waitGone polls until no matching process remains or d elapses, and returns
// whatever is still running. While listing fails the last known PIDs are
// assumed alive, and the listing error is returned with them.
func (c *MacController) waitGone(ctx context.Context, target Target, d time.Duration, known []int) ([]int, error) {
	deadline := time.Now().Add(d)
	var listErr error
	for {
		pids, err := c.find(ctx, target)
		switch {
		case err != nil:
			listErr = err
		case len(pids) == 0:
			return nil, nil
		default:
			known, listErr = pids, nil
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return known, listErr
		}
		select {
		case <-ctx.Done():
			return known, listErr
		case <-time.After(c.poll):
		}
	}
}

// find lists PIDs whose command line runs from the application bundle.
// pgrep exits 1 when nothing matches.
func (c *MacController) find(ctx context.Context, target Target) ([]int, error) {
	out, err := c.exec(ctx, "pgrep", "-f", pgrepPattern(target))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return parsePIDs(out), nil
}

func (c *MacController) exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cmdLimit)
	defer cancel()
	return c.run(ctx, name, args...)
}

func pgrepPattern(target Target) string {
	if target.BundlePath != "" {
		return regexp.QuoteMeta(filepath.Clean(target.BundlePath) + "/Contents/")
	}
	return regexp.QuoteMeta(target.Name + ".app/")
}

func quitScript(target Target) string {
	if target.BundleID != "" {
		return fmt.Sprintf(`tell application id %q to quit`, target.BundleID)
	}
	return fmt.Sprintf(`tell application %q to quit`, target.Name)
}

func parsePIDs(out []byte) []int {
	var pids []int
	for _, line := range bytes.Split(out, []byte("\n")) {
		pid, err := strconv.Atoi(strings.TrimSpace(string(line)))
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
