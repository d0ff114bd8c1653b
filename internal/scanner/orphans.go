package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/utils"
)

// Orphan is a leftover file whose application is no longer installed.
type Orphan struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Location string `json:"location"`
	AppName  string `json:"app_name"`
	BundleID string `json:"bundle_id"`
	IsDir    bool   `json:"is_dir"`
}

// FindOrphans scans the Preferences directory for .plist files whose
// application is not among installed. For each orphaned plist it also checks
// Caches and Application Support for entries named after the same bundle
// identifier or application. Apple's own preference domains are ignored.
func (l *Locator) FindOrphans(ctx context.Context, installed []catalog.AppInfo) ([]Orphan, error) {
	var orphans []Orphan
	lib := l.library()

	prefsDir := filepath.Join(lib, "Preferences")
	if !utils.DirExists(prefsDir) {
		return orphans, nil
	}

	entries, err := os.ReadDir(prefsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences directory: %w", err)
	}

	installedNames := make(map[string]bool)
	installedIDs := make(map[string]bool)
	for _, app := range installed {
		installedNames[strings.ToLower(app.Name)] = true
		installedNames[strings.ToLower(filepath.Base(app.Path))] = true
		if app.BundleID != "" {
			installedIDs[strings.ToLower(app.BundleID)] = true
		}
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return orphans, ctx.Err()
		default:
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".plist") || entry.IsDir() {
			continue
		}

		bundleID := strings.TrimSuffix(name, ".plist")
		if strings.HasPrefix(strings.ToLower(bundleID), "com.apple.") {
			continue
		}

		appName := extractAppName(name)
		if appName == "" {
			continue
		}

		appLower := strings.ToLower(appName)
		if installedIDs[strings.ToLower(bundleID)] || installedNames[appLower] || installedNames[appLower+".app"] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		seen[filepath.Join(prefsDir, name)] = true
		orphans = append(orphans, Orphan{
			Path:     filepath.Join(prefsDir, name),
			Size:     info.Size(),
			Location: "Preferences",
			AppName:  appName,
			BundleID: bundleID,
		})

		for _, dir := range []string{"Caches", "Application Support"} {
			for _, o := range l.orphanRemnants(filepath.Join(lib, dir), bundleID, appName) {
				if seen[o.Path] {
					continue
				}
				seen[o.Path] = true
				orphans = append(orphans, o)
			}
		}
	}

	return orphans, nil
}

// orphanRemnants returns entries of dirPath named exactly after bundleID or
// appName, case-insensitively.
func (l *Locator) orphanRemnants(dirPath, bundleID, appName string) []Orphan {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil
	}

	var found []Orphan
	for _, e := range entries {
		if !strings.EqualFold(e.Name(), bundleID) && !strings.EqualFold(e.Name(), appName) {
			continue
		}

		p := filepath.Join(dirPath, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}

		var size int64
		if info.IsDir() {
			size, _ = utils.DirSize(p)
		} else {
			size = info.Size()
		}

		found = append(found, Orphan{
			Path:     p,
			Size:     size,
			Location: filepath.Base(dirPath),
			AppName:  appName,
			BundleID: bundleID,
			IsDir:    info.IsDir(),
		})
	}
	return found
}

// extractAppName attempts to derive an app name from a plist filename.
// For example, "com.example.MyApp.plist" returns "MyApp".
func extractAppName(plistFilename string) string {
	base := strings.TrimSuffix(plistFilename, ".plist")
	parts := strings.Split(base, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}
