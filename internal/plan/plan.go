// Package plan aggregates an application and its residual files into a
// removal plan. It performs no I/O.
package plan

import (
	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/scanner"
)

// Plan is built fresh for every removal attempt and never persisted.
type Plan struct {
	App       catalog.AppInfo         `json:"app"`
	Residuals []scanner.ResidualEntry `json:"residuals"`
	TotalSize int64                   `json:"total_size"`
}

// New reuses the sizes captured during discovery; it does not walk the
// filesystem again.
func New(app catalog.AppInfo, residuals []scanner.ResidualEntry) Plan {
	if residuals == nil {
		residuals = []scanner.ResidualEntry{}
	}
	total := app.Size
	for _, r := range residuals {
		total += r.Size
	}
	return Plan{App: app, Residuals: residuals, TotalSize: total}
}

// ResidualSize is the combined size of the residual entries.
func (p Plan) ResidualSize() int64 {
	return p.TotalSize - p.App.Size
}

// Items is the number of filesystem entries the plan removes, bundle included.
func (p Plan) Items() int {
	return 1 + len(p.Residuals)
}

// Paths lists the bundle followed by every residual path, in removal order.
func (p Plan) Paths() []string {
	paths := make([]string, 0, p.Items())
	paths = append(paths, p.App.Path)
	for _, r := range p.Residuals {
		paths = append(paths, r.Path)
	}
	return paths
}
