package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/history"
	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/remover"
	"github.com/lu-zhengda/appsweep/internal/scanner"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---------------------------------------------------------------------------
// List / search JSON type
// ---------------------------------------------------------------------------

type appsJSON struct {
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Query     string            `json:"query,omitempty"`
	Apps      []catalog.AppInfo `json:"apps"`
	TotalSize int64             `json:"total_size"`
}

func buildAppsJSON(query string, apps []catalog.AppInfo) appsJSON {
	if apps == nil {
		apps = []catalog.AppInfo{}
	}
	var total int64
	for _, a := range apps {
		total += a.Size
	}
	return appsJSON{
		Version:   version,
		Timestamp: time.Now().UTC(),
		Query:     query,
		Apps:      apps,
		TotalSize: total,
	}
}

// ---------------------------------------------------------------------------
// Plan JSON type
// ---------------------------------------------------------------------------

type planJSON struct {
	Version   string                  `json:"version"`
	Timestamp time.Time               `json:"timestamp"`
	App       catalog.AppInfo         `json:"app"`
	Residuals []scanner.ResidualEntry `json:"residuals"`
	TotalSize int64                   `json:"total_size"`
	Breakdown Breakdown               `json:"breakdown"`
}

func buildPlanJSON(p plan.Plan) planJSON {
	return planJSON{
		Version:   version,
		Timestamp: time.Now().UTC(),
		App:       p.App,
		Residuals: p.Residuals,
		TotalSize: p.TotalSize,
		Breakdown: planBreakdown(p),
	}
}

// ---------------------------------------------------------------------------
// Remove JSON type
// ---------------------------------------------------------------------------

type outcomeJSON struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type removeJSON struct {
	planJSON
	Process   string        `json:"process"`
	OK        bool          `json:"ok"`
	Bundle    outcomeJSON   `json:"bundle"`
	Removed   []outcomeJSON `json:"removed_residuals"`
	Freed     int64         `json:"freed"`
	Failures  int           `json:"failures"`
	NeedsSudo bool          `json:"needs_sudo"`
}

func toOutcomeJSON(o remover.Outcome) outcomeJSON {
	out := outcomeJSON{Path: o.Path, Size: o.Size, OK: o.OK()}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

func buildRemoveJSON(p plan.Plan, res remover.Result) removeJSON {
	residuals := make([]outcomeJSON, 0, len(res.Residuals))
	for _, o := range res.Residuals {
		residuals = append(residuals, toOutcomeJSON(o))
	}
	return removeJSON{
		planJSON:  buildPlanJSON(p),
		Process:   res.Process.Status.String(),
		OK:        res.OK(),
		Bundle:    toOutcomeJSON(res.Bundle),
		Removed:   residuals,
		Freed:     res.Freed(),
		Failures:  len(res.Failures()),
		NeedsSudo: res.NeedsPrivileges(),
	}
}

// ---------------------------------------------------------------------------
// Orphans JSON type
// ---------------------------------------------------------------------------

type orphansJSON struct {
	Version   string           `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	Orphans   []scanner.Orphan `json:"orphans"`
	TotalSize int64            `json:"total_size"`
}

func buildOrphansJSON(orphans []scanner.Orphan) orphansJSON {
	if orphans == nil {
		orphans = []scanner.Orphan{}
	}
	var total int64
	for _, o := range orphans {
		total += o.Size
	}
	return orphansJSON{
		Version:   version,
		Timestamp: time.Now().UTC(),
		Orphans:   orphans,
		TotalSize: total,
	}
}

// ---------------------------------------------------------------------------
// History JSON type
// ---------------------------------------------------------------------------

type historyJSON struct {
	Version       string          `json:"version"`
	TotalFreed    int64           `json:"total_freed"`
	TotalRemovals int             `json:"total_removals"`
	TotalItems    int             `json:"total_items"`
	Recent        []history.Entry `json:"recent"`
}

func buildHistoryJSON(stats history.Stats) historyJSON {
	return historyJSON{
		Version:       version,
		TotalFreed:    stats.TotalFreed,
		TotalRemovals: stats.TotalRemovals,
		TotalItems:    stats.TotalItems,
		Recent:        stats.Recent,
	}
}
