// Package remover executes removal plans: it stops the running application,
// deletes the bundle, then deletes every residual entry independently.
package remover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/process"
)

// ErrMissing reports that a path vanished before it could be deleted.
var ErrMissing = errors.New("path no longer exists")

// Outcome is the result of deleting one path. Err is nil on success.
type Outcome struct {
	Path string
	Size int64
	Err  error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

type Result struct {
	Process   process.Outcome
	Bundle    Outcome
	Residuals []Outcome
}

// OK is true when the bundle was removed. Residual failures do not count.
func (r Result) OK() bool {
	return r.Bundle.OK()
}

// Freed sums the sizes of every path that was deleted.
func (r Result) Freed() int64 {
	var n int64
	if r.Bundle.OK() {
		n += r.Bundle.Size
	}
	for _, o := range r.Residuals {
		if o.OK() {
			n += o.Size
		}
	}
	return n
}

// Removed counts deleted paths, bundle included.
func (r Result) Removed() int {
	n := 0
	if r.Bundle.OK() {
		n++
	}
	for _, o := range r.Residuals {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failures returns every failed outcome, bundle first.
func (r Result) Failures() []Outcome {
	var failed []Outcome
	if !r.Bundle.OK() {
		failed = append(failed, r.Bundle)
	}
	for _, o := range r.Residuals {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// NeedsPrivileges reports whether any failure was a permission error.
func (r Result) NeedsPrivileges() bool {
	for _, o := range r.Failures() {
		if errors.Is(o.Err, fs.ErrPermission) {
			return true
		}
	}
	return false
}

type Remover struct {
	proc   process.Controller
	logger *slog.Logger
}

// New returns a Remover. A nil controller never stops processes.
func New(proc process.Controller, logger *slog.Logger) *Remover {
	if proc == nil {
		proc = process.Noop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Remover{proc: proc, logger: logger}
}

// Execute runs the plan. Callers must not run two removals of the same
// application concurrently. When ctx is cancelled the remaining entries are
// reported as failed with the context error; anything already deleted stays
// deleted.
func (r *Remover) Execute(ctx context.Context, p plan.Plan) Result {
	var res Result

	res.Process = r.proc.Quit(ctx, process.Target{
		Name:       p.App.Name,
		BundleID:   p.App.BundleID,
		BundlePath: p.App.Path,
	})
	switch res.Process.Status {
	case process.Failed:
		r.logger.Warn("could not stop application", "name", p.App.Name, "error", res.Process.Err)
	case process.Terminated:
		r.logger.Debug("stopped application", "name", p.App.Name, "pids", res.Process.PIDs)
	}

	res.Bundle = r.delete(ctx, p.App.Path, p.App.Size)

	res.Residuals = make([]Outcome, 0, len(p.Residuals))
	for _, entry := range p.Residuals {
		res.Residuals = append(res.Residuals, r.delete(ctx, entry.Path, entry.Size))
	}
	return res
}

func (r *Remover) delete(ctx context.Context, path string, size int64) Outcome {
	o := Outcome{Path: path, Size: size}
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}
	o.Err = Delete(path)
	if o.Err != nil {
		r.logger.Debug("delete failed", "path", path, "error", o.Err)
	}
	return o
}

// Delete permanently removes path and everything below it, then verifies the
// path is gone. A path that does not exist is an error wrapping both
// ErrMissing and fs.ErrNotExist.
func Delete(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return fmt.Errorf("refusing to delete non-absolute path %q", path)
	}
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) {
		return fmt.Errorf("refusing to delete %q", path)
	}

	if _, err := os.Lstat(clean); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrMissing, err)
		}
		return fmt.Errorf("failed to stat %s: %w", clean, err)
	}

	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("failed to remove %s: %w", clean, err)
	}

	if _, err := os.Lstat(clean); err == nil {
		return fmt.Errorf("failed to remove %s: still present", clean)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to verify removal of %s: %w", clean, err)
	}
	return nil
}
