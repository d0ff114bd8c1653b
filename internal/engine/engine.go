// Package engine ties the catalog, residual locator, planner and remover
// together for the CLI and TUI.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/config"
	"github.com/lu-zhengda/appsweep/internal/history"
	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/process"
	"github.com/lu-zhengda/appsweep/internal/remover"
	"github.com/lu-zhengda/appsweep/internal/scanner"
)

// Options configures an Engine. Zero values fall back to the macOS defaults
// with no exclusions, no process control and no history.
type Options struct {
	AppRoots   []string
	Library    string
	ExtraRoots []string
	Exclude    func(string) bool
	Process    process.Controller
	History    *history.History
	Logger     *slog.Logger
}

// Engine is safe for concurrent reads. Removals of the same application
// must not overlap.
type Engine struct {
	catalog *catalog.Catalog
	locator *scanner.Locator
	remover *remover.Remover
	history *history.History
	logger  *slog.Logger
	now     func() time.Time
}

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	roots := opts.AppRoots
	if len(roots) == 0 {
		roots = catalog.DefaultRoots()
	}

	locator := scanner.NewLocator(opts.Library, logger)
	if opts.ExtraRoots != nil {
		locator.SetExtraRoots(opts.ExtraRoots)
	}
	if opts.Exclude != nil {
		locator.SetExcludeFunc(opts.Exclude)
	}

	return &Engine{
		catalog: catalog.New(roots, logger),
		locator: locator,
		remover: remover.New(opts.Process, logger),
		history: opts.History,
		logger:  logger,
		now:     time.Now,
	}
}

// FromConfig builds an Engine from user configuration.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Engine {
	opts := Options{
		AppRoots:   cfg.AppRoots(),
		Library:    cfg.Library(),
		ExtraRoots: cfg.ExtraScanRoots,
		Exclude:    cfg.IsExcluded,
		Logger:     logger,
	}
	if cfg.Remove.QuitRunning {
		opts.Process = process.NewMacController(cfg.QuitWait(), logger)
	}
	if cfg.History.Enabled {
		opts.History = history.New(history.DefaultPath())
	}
	return New(opts)
}

// History returns the removal log, or nil when disabled.
func (e *Engine) History() *history.History {
	return e.history
}

// ScanRoots returns the library directories searched for residuals.
func (e *Engine) ScanRoots() []string {
	return e.locator.Roots()
}

func (e *Engine) List() []catalog.AppInfo {
	return e.catalog.List()
}

func (e *Engine) Search(query string) []catalog.AppInfo {
	return e.catalog.Search(query)
}

func (e *Engine) Find(name string) (catalog.AppInfo, error) {
	return e.catalog.Find(name)
}

// Plan locates the residual files of app and builds its removal plan. The
// plan is a snapshot; anything that changes on disk afterwards shows up as
// a failed or missing entry at removal time.
func (e *Engine) Plan(ctx context.Context, app catalog.AppInfo) (plan.Plan, error) {
	residuals, err := e.locator.FindResiduals(ctx, app)
	if err != nil {
		return plan.Plan{}, err
	}
	return plan.New(app, residuals), nil
}

// PlanByName resolves name with the catalog and plans its removal.
func (e *Engine) PlanByName(ctx context.Context, name string) (plan.Plan, error) {
	app, err := e.catalog.Find(name)
	if err != nil {
		return plan.Plan{}, err
	}
	return e.Plan(ctx, app)
}

// Remove executes p and appends the outcome to the history log when one is
// configured. A history write failure is logged, never returned.
func (e *Engine) Remove(ctx context.Context, p plan.Plan) remover.Result {
	start := e.now()
	res := e.remover.Execute(ctx, p)
	e.logger.Debug("removal finished",
		"app", p.App.Name,
		"removed", res.Removed(),
		"failures", len(res.Failures()),
		"elapsed", e.now().Sub(start))

	if e.history != nil && res.Removed() > 0 {
		err := e.history.Record(history.Entry{
			Timestamp:  e.now(),
			App:        p.App.Name,
			BundleID:   p.App.BundleID,
			Path:       p.App.Path,
			Items:      res.Removed(),
			BytesFreed: res.Freed(),
			Failures:   len(res.Failures()),
		})
		if err != nil {
			e.logger.Warn("could not record history", "error", err)
		}
	}
	return res
}

// RemoveByName plans and executes the removal of the named application. An
// unknown name returns an error wrapping catalog.ErrNotFound and leaves the
// filesystem untouched.
func (e *Engine) RemoveByName(ctx context.Context, name string) (plan.Plan, remover.Result, error) {
	p, err := e.PlanByName(ctx, name)
	if err != nil {
		return plan.Plan{}, remover.Result{}, err
	}
	res := e.Remove(ctx, p)
	if !res.OK() {
		return p, res, fmt.Errorf("failed to remove %s: %w", p.App.Name, res.Bundle.Err)
	}
	return p, res, nil
}

// Orphans lists leftovers of applications that are no longer installed.
func (e *Engine) Orphans(ctx context.Context) ([]scanner.Orphan, error) {
	return e.locator.FindOrphans(ctx, e.catalog.List())
}
