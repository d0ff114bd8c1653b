package scanner

import (
	"fmt"
	"time"
)

// MatchField records which identity field caused a residual match.
type MatchField int

const (
	MatchBundleID MatchField = iota
	MatchName
)

func (m MatchField) String() string {
	switch m {
	case MatchBundleID:
		return "bundle_id"
	case MatchName:
		return "name"
	default:
		return "unknown"
	}
}

func (m MatchField) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MatchField) UnmarshalText(b []byte) error {
	switch string(b) {
	case "bundle_id":
		*m = MatchBundleID
	case "name":
		*m = MatchName
	default:
		return fmt.Errorf("unknown match field %q", string(b))
	}
	return nil
}

// ResidualEntry is one auxiliary file or directory left by an application.
// Directories are reported whole; Size covers the full subtree.
type ResidualEntry struct {
	Path      string     `json:"path"`
	Size      int64      `json:"size"`
	MatchedBy MatchField `json:"matched_by"`
	Location  string     `json:"location"`
	IsDir     bool       `json:"is_dir"`
	ModTime   time.Time  `json:"mod_time"`
}

// ScanRoots are the ~/Library subdirectories searched for residual files.
var ScanRoots = []string{
	"Application Support",
	"Caches",
	"Preferences",
	"Logs",
	"Saved Application State",
	"Containers",
	"Group Containers",
	"Application Scripts",
	"WebKit",
	"LaunchAgents",
}

// DefaultExtraRoots are searched in addition to ScanRoots unless the
// configuration says otherwise.
var DefaultExtraRoots = []string{
	"HTTPStorages",
	"Cookies",
}
