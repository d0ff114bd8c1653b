package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lu-zhengda/appsweep/internal/bundle"
	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/utils"
)

// Locator finds residual files for an application under a Library directory.
type Locator struct {
	libraryBase string
	extraRoots  []string
	excludeFunc func(string) bool
	logger      *slog.Logger
}

func NewLocator(libraryBase string, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{
		libraryBase: libraryBase,
		extraRoots:  DefaultExtraRoots,
		logger:      logger,
	}
}

// SetExtraRoots replaces the Library subdirectories searched after ScanRoots.
func (l *Locator) SetExtraRoots(roots []string) {
	l.extraRoots = roots
}

// SetExcludeFunc installs a predicate; matching paths are never reported.
func (l *Locator) SetExcludeFunc(fn func(string) bool) {
	l.excludeFunc = fn
}

func (l *Locator) library() string {
	if l.libraryBase != "" {
		return l.libraryBase
	}
	return utils.LibraryPath("")
}

// Roots returns the absolute directories the locator scans, in order.
func (l *Locator) Roots() []string {
	lib := l.library()
	seen := make(map[string]bool)
	var roots []string
	for i, dir := range append(append([]string{}, ScanRoots...), l.extraRoots...) {
		if i >= len(ScanRoots) && !isRootName(dir) {
			l.logger.Debug("ignoring extra scan root", "root", dir, "reason", "not a directory name")
			continue
		}
		p := filepath.Join(lib, dir)
		if !utils.IsWithin(p, lib) {
			l.logger.Debug("ignoring extra scan root", "root", dir, "reason", "outside the library")
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		roots = append(roots, p)
	}
	return roots
}

// isRootName reports whether dir names a single directory, the only form an
// extra scan root may take.
func isRootName(dir string) bool {
	if dir == "" || dir == "." || dir == ".." || filepath.IsAbs(dir) {
		return false
	}
	return filepath.Base(dir) == dir
}

// matchTerms holds the lower-cased search terms derived from an application.
type matchTerms struct {
	bundleID string
	name     string
}

func termsFor(app catalog.AppInfo) matchTerms {
	name := strings.TrimSpace(app.Name)
	if strings.HasSuffix(strings.ToLower(name), bundle.Extension) {
		name = name[:len(name)-len(bundle.Extension)]
	}
	return matchTerms{
		bundleID: strings.ToLower(strings.TrimSpace(app.BundleID)),
		name:     strings.ToLower(strings.TrimSpace(name)),
	}
}

// match reports whether an entry name belongs to the application. A bundle
// identifier match always takes precedence over a name match.
func (m matchTerms) match(entryName string) (MatchField, bool) {
	lower := strings.ToLower(entryName)
	if m.bundleID != "" && strings.Contains(lower, m.bundleID) {
		return MatchBundleID, true
	}
	if m.name != "" && strings.Contains(lower, m.name) {
		return MatchName, true
	}
	return 0, false
}

// FindResiduals scans the immediate children of each root and returns those
// whose name contains the bundle identifier or, failing that, the display
// name. Missing or unreadable roots are skipped. Entries inside the bundle,
// or containing it, are never reported. Results are ordered bundle-id
// matches first, then by path.
func (l *Locator) FindResiduals(ctx context.Context, app catalog.AppInfo) ([]ResidualEntry, error) {
	terms := termsFor(app)
	var entries []ResidualEntry
	if terms.bundleID == "" && terms.name == "" {
		return entries, nil
	}

	seen := make(map[string]bool)
	for _, root := range l.Roots() {
		select {
		case <-ctx.Done():
			return entries, ctx.Err()
		default:
		}

		children, err := os.ReadDir(root)
		if err != nil {
			l.logger.Debug("skipping scan root", "root", root, "error", err)
			continue
		}

		for _, child := range children {
			field, ok := terms.match(child.Name())
			if !ok {
				continue
			}

			entryPath := filepath.Join(root, child.Name())
			if seen[entryPath] {
				continue
			}
			if app.Path != "" && (entryPath == filepath.Clean(app.Path) ||
				utils.IsWithin(entryPath, app.Path) || utils.IsWithin(app.Path, entryPath)) {
				l.logger.Debug("skipping entry overlapping the bundle", "path", entryPath)
				continue
			}
			if l.excludeFunc != nil && l.excludeFunc(entryPath) {
				l.logger.Debug("excluded by config", "path", entryPath)
				continue
			}

			info, err := child.Info()
			if err != nil {
				l.logger.Debug("skipping unreadable entry", "path", entryPath, "error", err)
				continue
			}

			var size int64
			if info.IsDir() {
				size, _ = utils.DirSize(entryPath)
			} else if info.Mode().IsRegular() {
				size = info.Size()
			}

			seen[entryPath] = true
			entries = append(entries, ResidualEntry{
				Path:      entryPath,
				Size:      size,
				MatchedBy: field,
				Location:  filepath.Base(root),
				IsDir:     info.IsDir(),
				ModTime:   info.ModTime(),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].MatchedBy != entries[j].MatchedBy {
			return entries[i].MatchedBy < entries[j].MatchedBy
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
