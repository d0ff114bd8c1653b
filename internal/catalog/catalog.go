// Package catalog enumerates installed application bundles.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lu-zhengda/appsweep/internal/bundle"
	"github.com/lu-zhengda/appsweep/internal/utils"
)

// ErrNotFound is returned by Find when no installed application matches.
var ErrNotFound = errors.New("application not found")

// AppInfo is a snapshot of one installed application. It is not kept in sync
// with the filesystem; re-scan before acting on stale data.
type AppInfo struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	BundleID string `json:"bundle_id,omitempty"`
	Version  string `json:"version,omitempty"`
	Size     int64  `json:"size"`
}

// HasBundleID reports whether the bundle metadata provided an identifier.
func (a AppInfo) HasBundleID() bool {
	return a.BundleID != ""
}

// DefaultRoots returns /Applications and ~/Applications.
func DefaultRoots() []string {
	return []string{"/Applications", filepath.Join(utils.HomeDir(), "Applications")}
}

type Catalog struct {
	roots  []string
	logger *slog.Logger
}

// New creates a catalog over the given application directories. An empty
// roots slice means DefaultRoots.
func New(roots []string, logger *slog.Logger) *Catalog {
	if len(roots) == 0 {
		roots = DefaultRoots()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{roots: roots, logger: logger}
}

// Roots returns the application directories this catalog scans.
func (c *Catalog) Roots() []string {
	return c.roots
}

// bundlePaths returns every application bundle directly under the roots.
// Unreadable roots and entries that cannot be stat'ed are skipped.
func (c *Catalog) bundlePaths() []string {
	seen := make(map[string]bool)
	var paths []string

	for _, root := range c.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			c.logger.Debug("skipping application root", "root", root, "error", err)
			continue
		}

		for _, entry := range entries {
			if !bundle.IsBundle(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				c.logger.Debug("skipping unreadable bundle", "name", entry.Name(), "error", err)
				continue
			}
			// Symlinked bundles belong to something else; removing the link
			// would not remove the application.
			if !info.IsDir() {
				continue
			}

			p := filepath.Clean(filepath.Join(root, entry.Name()))
			if seen[p] {
				continue
			}
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// List returns every installed application, sorted by name
// case-insensitively.
func (c *Catalog) List() []AppInfo {
	paths := c.bundlePaths()
	sizes := utils.DirSizesParallel(paths)

	apps := make([]AppInfo, 0, len(paths))
	for _, p := range paths {
		apps = append(apps, c.newAppInfo(p, sizes[p]))
	}

	sort.SliceStable(apps, func(i, j int) bool {
		a, b := strings.ToLower(apps[i].Name), strings.ToLower(apps[j].Name)
		if a != b {
			return a < b
		}
		return apps[i].Path < apps[j].Path
	})
	return apps
}

// Search returns the applications whose name contains query,
// case-insensitively. An empty query returns the full catalog.
func (c *Catalog) Search(query string) []AppInfo {
	return Filter(c.List(), query)
}

// Filter applies the Search rule to an already listed catalog, preserving
// order.
func Filter(apps []AppInfo, query string) []AppInfo {
	if query == "" {
		return apps
	}
	q := strings.ToLower(query)
	matches := make([]AppInfo, 0)
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Name), q) {
			matches = append(matches, app)
		}
	}
	return matches
}

// Find resolves a user-supplied application name. It accepts an absolute
// bundle path, a bundle filename with or without ".app", or a display name.
// Exact filename matches win over case-insensitive ones, which win over a
// unique display-name match.
func (c *Catalog) Find(name string) (AppInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AppInfo{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if filepath.IsAbs(name) && bundle.IsBundle(name) {
		if utils.DirExists(name) {
			return c.build(filepath.Clean(name)), nil
		}
		return AppInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	filename := name
	if !bundle.IsBundle(filename) {
		filename += bundle.Extension
	}

	paths := c.bundlePaths()
	for _, p := range paths {
		if filepath.Base(p) == filename {
			return c.build(p), nil
		}
	}
	for _, p := range paths {
		if strings.EqualFold(filepath.Base(p), filename) {
			return c.build(p), nil
		}
	}

	var found []AppInfo
	for _, p := range paths {
		id := bundle.Inspect(p)
		if strings.EqualFold(id.Name, name) {
			found = append(found, AppInfo{Path: p})
		}
	}
	switch len(found) {
	case 1:
		return c.build(found[0].Path), nil
	case 0:
		return AppInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		return AppInfo{}, fmt.Errorf("%w: %q is ambiguous (%d applications share that name)", ErrNotFound, name, len(found))
	}
}

func (c *Catalog) build(path string) AppInfo {
	size, _ := utils.DirSize(path)
	return c.newAppInfo(path, size)
}

func (c *Catalog) newAppInfo(path string, size int64) AppInfo {
	id := bundle.Inspect(path)
	if !id.FromMetadata {
		c.logger.Debug("bundle metadata unavailable, using filename", "path", path)
	}
	return AppInfo{
		Path:     path,
		Name:     id.Name,
		BundleID: id.BundleID,
		Version:  id.Version,
		Size:     size,
	}
}
