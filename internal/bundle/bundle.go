// Package bundle reads the identity of a macOS application bundle from its
// embedded Info.plist.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// Extension is the directory suffix that marks an application bundle.
const Extension = ".app"

// InfoPlistPath is the metadata file location relative to the bundle root.
const InfoPlistPath = "Contents/Info.plist"

// Info mirrors the Info.plist keys the inspector consumes.
type Info struct {
	DisplayName string `plist:"CFBundleDisplayName,omitempty"`
	BundleName  string `plist:"CFBundleName,omitempty"`
	Identifier  string `plist:"CFBundleIdentifier,omitempty"`
	Version     string `plist:"CFBundleShortVersionString,omitempty"`
}

// Identity is what the rest of the program knows about a bundle.
// BundleID is empty when the metadata is missing or unusable.
type Identity struct {
	Name     string
	BundleID string
	Version  string

	// FromMetadata is false when Name fell back to the bundle filename.
	FromMetadata bool
}

// IsBundle reports whether name follows the application bundle convention.
func IsBundle(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), Extension) && len(name) > len(Extension)
}

// Stem returns the bundle filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if IsBundle(base) {
		return base[:len(base)-len(Extension)]
	}
	return base
}

// ReadInfo decodes the bundle's Info.plist. Both XML and binary property
// lists are accepted.
func ReadInfo(bundlePath string) (Info, error) {
	var info Info
	data, err := os.ReadFile(filepath.Join(bundlePath, InfoPlistPath))
	if err != nil {
		return info, fmt.Errorf("failed to read Info.plist: %w", err)
	}
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("failed to parse Info.plist: %w", err)
	}
	return info, nil
}

// Inspect returns the bundle's display name and identifier. It never fails:
// missing or malformed metadata yields the filename stem and no identifier.
func Inspect(bundlePath string) Identity {
	id := Identity{Name: Stem(bundlePath)}

	info, err := ReadInfo(bundlePath)
	if err != nil {
		return id
	}

	id.BundleID = strings.TrimSpace(info.Identifier)
	id.Version = strings.TrimSpace(info.Version)

	name := strings.TrimSpace(info.DisplayName)
	if name == "" {
		name = strings.TrimSpace(info.BundleName)
	}
	if name != "" {
		id.Name = name
		id.FromMetadata = true
	}
	return id
}
