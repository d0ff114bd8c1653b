package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

func writeInfoPlist(t *testing.T, bundlePath string, info map[string]string, format int) {
	t.Helper()
	contents := filepath.Join(bundlePath, "Contents")
	if err := os.MkdirAll(contents, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := plist.Marshal(info, format)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contents, "Info.plist"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInspect_XMLPlist(t *testing.T) {
	app := filepath.Join(t.TempDir(), "Foo.app")
	writeInfoPlist(t, app, map[string]string{
		"CFBundleDisplayName":        "Foo Deluxe",
		"CFBundleName":               "Foo",
		"CFBundleIdentifier":         "com.example.foo",
		"CFBundleShortVersionString": "1.2.3",
	}, plist.XMLFormat)

	id := Inspect(app)
	if id.Name != "Foo Deluxe" {
		t.Errorf("Name = %q, want %q", id.Name, "Foo Deluxe")
	}
	if id.BundleID != "com.example.foo" {
		t.Errorf("BundleID = %q, want %q", id.BundleID, "com.example.foo")
	}
	if id.Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", id.Version, "1.2.3")
	}
	if !id.FromMetadata {
		t.Error("expected FromMetadata to be true")
	}
}

func TestInspect_BinaryPlistFallsBackToBundleName(t *testing.T) {
	app := filepath.Join(t.TempDir(), "Bar.app")
	writeInfoPlist(t, app, map[string]string{
		"CFBundleName":       "Bar",
		"CFBundleIdentifier": "org.example.bar",
	}, plist.BinaryFormat)

	id := Inspect(app)
	if id.Name != "Bar" {
		t.Errorf("Name = %q, want %q", id.Name, "Bar")
	}
	if id.BundleID != "org.example.bar" {
		t.Errorf("BundleID = %q, want %q", id.BundleID, "org.example.bar")
	}
}

func TestInspect_MissingPlist(t *testing.T) {
	app := filepath.Join(t.TempDir(), "Plain.app")
	if err := os.MkdirAll(app, 0o755); err != nil {
		t.Fatal(err)
	}

	id := Inspect(app)
	if id.Name != "Plain" {
		t.Errorf("Name = %q, want %q", id.Name, "Plain")
	}
	if id.BundleID != "" {
		t.Errorf("BundleID = %q, want empty", id.BundleID)
	}
	if id.FromMetadata {
		t.Error("expected FromMetadata to be false")
	}
}

func TestInspect_CorruptPlist(t *testing.T) {
	app := filepath.Join(t.TempDir(), "Broken.app")
	contents := filepath.Join(app, "Contents")
	if err := os.MkdirAll(contents, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contents, "Info.plist"), []byte("<plist><dict><key>"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := Inspect(app)
	if id.Name != "Broken" {
		t.Errorf("Name = %q, want %q", id.Name, "Broken")
	}
	if id.BundleID != "" {
		t.Errorf("BundleID = %q, want empty", id.BundleID)
	}
}

func TestInspect_IdentifierWithoutNames(t *testing.T) {
	app := filepath.Join(t.TempDir(), "Nameless.app")
	writeInfoPlist(t, app, map[string]string{
		"CFBundleIdentifier": "  com.example.nameless\n",
	}, plist.XMLFormat)

	id := Inspect(app)
	if id.Name != "Nameless" {
		t.Errorf("Name = %q, want %q", id.Name, "Nameless")
	}
	if id.BundleID != "com.example.nameless" {
		t.Errorf("BundleID = %q, want trimmed identifier", id.BundleID)
	}
}

func TestIsBundleAndStem(t *testing.T) {
	tests := []struct {
		name     string
		isBundle bool
		stem     string
	}{
		{"Foo.app", true, "Foo"},
		{"Google Chrome.APP", true, "Google Chrome"},
		{".app", false, ".app"},
		{"notes.txt", false, "notes.txt"},
		{"Foo.application", false, "Foo.application"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBundle(tt.name); got != tt.isBundle {
				t.Errorf("IsBundle(%q) = %v, want %v", tt.name, got, tt.isBundle)
			}
			if got := Stem("/Applications/" + tt.name); got != tt.stem {
				t.Errorf("Stem(%q) = %q, want %q", tt.name, got, tt.stem)
			}
		})
	}
}
