package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"howett.net/plist"
)

// makeApp creates a fake bundle with an optional Info.plist and a payload of
// the given size.
func makeApp(t *testing.T, root, file, displayName, bundleID string, payload int) string {
	t.Helper()
	app := filepath.Join(root, file)
	contents := filepath.Join(app, "Contents")
	if err := os.MkdirAll(filepath.Join(contents, "MacOS"), 0o755); err != nil {
		t.Fatal(err)
	}
	if displayName != "" || bundleID != "" {
		info := map[string]string{}
		if displayName != "" {
			info["CFBundleName"] = displayName
		}
		if bundleID != "" {
			info["CFBundleIdentifier"] = bundleID
		}
		data, err := plist.Marshal(info, plist.XMLFormat)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(contents, "Info.plist"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if payload > 0 {
		if err := os.WriteFile(filepath.Join(contents, "MacOS", "bin"), make([]byte, payload), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return app
}

func TestCatalog_List(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "Zeta.app", "Zeta", "com.example.zeta", 100)
	makeApp(t, root, "alpha.app", "", "", 50)
	os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644)
	os.MkdirAll(filepath.Join(root, "Utilities"), 0o755)

	c := New([]string{root}, nil)
	apps := c.List()
	if len(apps) != 2 {
		t.Fatalf("expected 2 apps, got %d", len(apps))
	}

	if apps[0].Name != "alpha" || apps[1].Name != "Zeta" {
		t.Errorf("unexpected order: %q, %q", apps[0].Name, apps[1].Name)
	}
	if apps[0].BundleID != "" {
		t.Errorf("expected no bundle id for alpha, got %q", apps[0].BundleID)
	}
	if apps[1].BundleID != "com.example.zeta" {
		t.Errorf("BundleID = %q, want com.example.zeta", apps[1].BundleID)
	}

	for _, app := range apps {
		if app.Size <= 0 {
			t.Errorf("%s: expected positive size, got %d", app.Name, app.Size)
		}
		if _, err := os.Stat(app.Path); err != nil {
			t.Errorf("%s: path does not exist: %v", app.Name, err)
		}
	}
}

func TestCatalog_List_MissingRootIsSkipped(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "Foo.app", "Foo", "com.example.foo", 10)

	c := New([]string{filepath.Join(t.TempDir(), "nope"), root}, nil)
	apps := c.List()
	if len(apps) != 1 {
		t.Fatalf("expected 1 app, got %d", len(apps))
	}
}

func TestCatalog_List_SkipsSymlinkedBundles(t *testing.T) {
	root := t.TempDir()
	real := makeApp(t, t.TempDir(), "Real.app", "Real", "", 10)
	if err := os.Symlink(real, filepath.Join(root, "Real.app")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	c := New([]string{root}, nil)
	if apps := c.List(); len(apps) != 0 {
		t.Fatalf("expected symlinked bundle to be skipped, got %d apps", len(apps))
	}
}

func TestCatalog_List_DeduplicatesRoots(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "Foo.app", "Foo", "", 10)

	c := New([]string{root, root + "/"}, nil)
	if apps := c.List(); len(apps) != 1 {
		t.Fatalf("expected 1 app, got %d", len(apps))
	}
}

func TestCatalog_Search(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "Google Chrome.app", "Google Chrome", "com.google.Chrome", 10)
	makeApp(t, root, "Chromium.app", "Chromium", "org.chromium.Chromium", 10)
	makeApp(t, root, "Safari.app", "Safari", "com.apple.Safari", 10)

	c := New([]string{root}, nil)

	lower := c.Search("chrome")
	upper := c.Search("CHROME")
	if !reflect.DeepEqual(lower, upper) {
		t.Errorf("search should be case-insensitive: %v vs %v", lower, upper)
	}
	if len(lower) != 1 || lower[0].Name != "Google Chrome" {
		t.Errorf("expected only Google Chrome, got %+v", lower)
	}

	if got := c.Search("chrom"); len(got) != 2 {
		t.Errorf("expected 2 matches for 'chrom', got %d", len(got))
	}

	none := c.Search("nothing-like-this")
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", none)
	}
}

func TestCatalog_SearchEmptyEqualsList(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "B.app", "B", "", 10)
	makeApp(t, root, "A.app", "A", "", 20)

	c := New([]string{root}, nil)
	if !reflect.DeepEqual(c.Search(""), c.List()) {
		t.Error("Search(\"\") should equal List()")
	}
}

func TestCatalog_Find(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	foo := makeApp(t, root, "Foo.app", "Foo", "com.example.foo", 10)
	vsc := makeApp(t, other, "Visual Studio Code.app", "Code", "com.microsoft.VSCode", 10)

	c := New([]string{root, other}, nil)

	tests := []struct {
		name     string
		query    string
		wantPath string
	}{
		{"exact filename", "Foo", foo},
		{"with extension", "Foo.app", foo},
		{"case-insensitive filename", "foo", foo},
		{"display name", "code", vsc},
		{"absolute path", foo, foo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := c.Find(tt.query)
			if err != nil {
				t.Fatalf("Find(%q) error: %v", tt.query, err)
			}
			if app.Path != tt.wantPath {
				t.Errorf("Find(%q).Path = %q, want %q", tt.query, app.Path, tt.wantPath)
			}
			if app.Size < 10 {
				t.Errorf("Find(%q).Size = %d, want at least the 10 byte payload", tt.query, app.Size)
			}
		})
	}
}

func TestCatalog_FindNotFound(t *testing.T) {
	c := New([]string{t.TempDir()}, nil)

	for _, q := range []string{"NoSuchApp", "", "/Applications/Missing.app"} {
		_, err := c.Find(q)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Find(%q) error = %v, want ErrNotFound", q, err)
		}
	}
}

func TestCatalog_FindAmbiguousDisplayName(t *testing.T) {
	root := t.TempDir()
	makeApp(t, root, "One.app", "Twin", "", 1)
	makeApp(t, root, "Two.app", "Twin", "", 1)

	c := New([]string{root}, nil)
	if _, err := c.Find("twin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for ambiguous name, got %v", err)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	apps := []AppInfo{{Name: "Xcode"}, {Name: "Docker"}, {Name: "Codex"}}
	got := Filter(apps, "CODE")
	if len(got) != 2 || got[0].Name != "Xcode" || got[1].Name != "Codex" {
		t.Errorf("unexpected filter result: %+v", got)
	}
}
