package remover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/process"
	"github.com/lu-zhengda/appsweep/internal/scanner"
)

type fakeController struct {
	outcome process.Outcome
	targets []process.Target
}

func (f *fakeController) Quit(_ context.Context, target process.Target) process.Outcome {
	f.targets = append(f.targets, target)
	return f.outcome
}

func mkdirWithFile(t *testing.T, dir string, size int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data"), make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixturePlan(t *testing.T) plan.Plan {
	t.Helper()
	root := t.TempDir()
	app := filepath.Join(root, "Applications", "Foo.app")
	caches := filepath.Join(root, "Library", "Caches", "com.example.foo")
	logs := filepath.Join(root, "Library", "Logs", "Foo")
	mkdirWithFile(t, app, 100)
	mkdirWithFile(t, caches, 20)
	mkdirWithFile(t, logs, 10)

	return plan.New(
		catalog.AppInfo{Path: app, Name: "Foo", BundleID: "com.example.foo", Size: 100},
		[]scanner.ResidualEntry{
			{Path: caches, Size: 20, MatchedBy: scanner.MatchBundleID},
			{Path: logs, Size: 10, MatchedBy: scanner.MatchName},
		},
	)
}

func TestExecute_RemovesEverything(t *testing.T) {
	p := fixturePlan(t)
	proc := &fakeController{outcome: process.Outcome{Status: process.Terminated}}

	res := New(proc, nil).Execute(context.Background(), p)
	if !res.OK() {
		t.Fatalf("expected success, bundle error: %v", res.Bundle.Err)
	}
	if len(res.Residuals) != 2 {
		t.Fatalf("expected 2 residual outcomes, got %d", len(res.Residuals))
	}
	for _, o := range res.Residuals {
		if !o.OK() {
			t.Errorf("residual %s failed: %v", o.Path, o.Err)
		}
	}
	for _, path := range p.Paths() {
		if _, err := os.Lstat(path); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s still exists", path)
		}
	}
	if res.Freed() != p.TotalSize {
		t.Errorf("Freed = %d, want %d", res.Freed(), p.TotalSize)
	}
	if res.Removed() != 3 {
		t.Errorf("Removed = %d, want 3", res.Removed())
	}

	if len(proc.targets) != 1 {
		t.Fatalf("expected one quit request, got %d", len(proc.targets))
	}
	if proc.targets[0].BundleID != "com.example.foo" || proc.targets[0].BundlePath != p.App.Path {
		t.Errorf("unexpected quit target: %+v", proc.targets[0])
	}
}

func TestExecute_ResidualFailureIsNotFatal(t *testing.T) {
	p := fixturePlan(t)
	missing := filepath.Join(t.TempDir(), "gone")
	p.Residuals = append([]scanner.ResidualEntry{{Path: missing, Size: 5}}, p.Residuals...)

	res := New(nil, nil).Execute(context.Background(), p)
	if !res.OK() {
		t.Fatalf("residual failure must not fail the removal: %v", res.Bundle.Err)
	}
	if res.Residuals[0].OK() {
		t.Error("expected the missing residual to fail")
	}
	if !errors.Is(res.Residuals[0].Err, ErrMissing) {
		t.Errorf("error = %v, want ErrMissing", res.Residuals[0].Err)
	}
	if !res.Residuals[1].OK() || !res.Residuals[2].OK() {
		t.Error("later residuals should still be deleted")
	}
	if len(res.Failures()) != 1 {
		t.Errorf("Failures = %d, want 1", len(res.Failures()))
	}
}

func TestExecute_ProcessFailureIsNotFatal(t *testing.T) {
	p := fixturePlan(t)
	proc := &fakeController{outcome: process.Outcome{Status: process.Failed, Err: errors.New("stuck")}}

	res := New(proc, nil).Execute(context.Background(), p)
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Bundle.Err)
	}
	if res.Process.Status != process.Failed {
		t.Errorf("Process.Status = %s, want failed", res.Process.Status)
	}
}

func TestExecute_Twice(t *testing.T) {
	p := fixturePlan(t)
	r := New(&fakeController{}, nil)

	first := r.Execute(context.Background(), p)
	if !first.OK() {
		t.Fatalf("first removal failed: %v", first.Bundle.Err)
	}

	second := r.Execute(context.Background(), p)
	if second.OK() {
		t.Fatal("second removal should report the bundle as missing")
	}
	if !errors.Is(second.Bundle.Err, ErrMissing) || !errors.Is(second.Bundle.Err, fs.ErrNotExist) {
		t.Errorf("bundle error = %v, want ErrMissing wrapping fs.ErrNotExist", second.Bundle.Err)
	}
	if second.Freed() != 0 {
		t.Errorf("Freed = %d, want 0", second.Freed())
	}
}

func TestExecute_Cancelled(t *testing.T) {
	p := fixturePlan(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(nil, nil).Execute(ctx, p)
	if res.OK() {
		t.Fatal("cancelled removal should not report success")
	}
	if !errors.Is(res.Bundle.Err, context.Canceled) {
		t.Errorf("bundle error = %v, want context.Canceled", res.Bundle.Err)
	}
	for _, o := range res.Residuals {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("residual %s error = %v, want context.Canceled", o.Path, o.Err)
		}
	}
	if _, err := os.Stat(p.App.Path); err != nil {
		t.Errorf("bundle should be untouched: %v", err)
	}
}

func TestDelete_File(t *testing.T) {
	f := filepath.Join(t.TempDir(), "com.example.foo.plist")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Delete(f); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Lstat(f); !errors.Is(err, fs.ErrNotExist) {
		t.Error("file still exists")
	}
}

func TestDelete_SymlinkRemovesLinkOnly(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	mkdirWithFile(t, target, 1)
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := Delete(link); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "data")); err != nil {
		t.Errorf("symlink target should survive: %v", err)
	}
}

func TestDelete_Refuses(t *testing.T) {
	for _, p := range []string{"", "relative/path", "/"} {
		if err := Delete(p); err == nil {
			t.Errorf("Delete(%q) should be refused", p)
		}
	}
}

func TestResult_NeedsPrivileges(t *testing.T) {
	res := Result{
		Bundle:    Outcome{Path: "/Applications/Foo.app"},
		Residuals: []Outcome{{Path: "/x", Err: fmt.Errorf("failed to remove /x: %w", fs.ErrPermission)}},
	}
	if !res.NeedsPrivileges() {
		t.Error("expected NeedsPrivileges to be true")
	}
	if !res.OK() {
		t.Error("residual permission failure must not fail the result")
	}

	res.Residuals[0].Err = ErrMissing
	if res.NeedsPrivileges() {
		t.Error("expected NeedsPrivileges to be false")
	}
}
