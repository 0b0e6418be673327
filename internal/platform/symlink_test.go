package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func mkPackage(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// realTempDir returns a temp dir with symlinks resolved, so paths compare
// equal to what ReadLink reports.
func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCreateLink(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "pkg")
	mkPackage(t, target, `{"name":"pkg"}`)

	link := filepath.Join(tmp, "node_modules", "pkg")
	if err := CreateLink(target, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(link, "package.json"))
	if err != nil {
		t.Fatalf("reading through link: %v", err)
	}
	if string(data) != `{"name":"pkg"}` {
		t.Errorf("content through link = %q", string(data))
	}
}

func TestCreateLinkRelativeText(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows links store absolute targets")
	}
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "global", "lib", "node_modules", "a")
	mkPackage(t, target, `{"name":"a"}`)

	link := filepath.Join(tmp, "project", "node_modules", "a")
	if err := CreateLink(target, link); err != nil {
		t.Fatal(err)
	}

	raw, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("Readlink failed: %v", err)
	}
	want := filepath.Join("..", "..", "global", "lib", "node_modules", "a")
	if raw != want {
		t.Errorf("symlink text = %q, want %q", raw, want)
	}
}

func TestCreateLinkScopedParents(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "scoped")
	mkPackage(t, target, `{"name":"@scope/name"}`)

	link := filepath.Join(tmp, "node_modules", "@scope", "name")
	if err := CreateLink(target, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if info, err := os.Stat(filepath.Join(tmp, "node_modules", "@scope")); err != nil || !info.IsDir() {
		t.Error("scope directory not created")
	}
}

func TestCreateLinkIdempotent(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "pkg")
	mkPackage(t, target, `{"name":"pkg"}`)
	link := filepath.Join(tmp, "link")

	if err := CreateLink(target, link); err != nil {
		t.Fatal(err)
	}
	if err := CreateLink(target, link); err != nil {
		t.Fatalf("second CreateLink failed: %v", err)
	}

	got, err := ReadLink(link)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("ReadLink = %q, want %q", got, target)
	}
}

func TestCreateLinkReplacesExisting(t *testing.T) {
	tmp := realTempDir(t)
	oldTarget := filepath.Join(tmp, "old")
	newTarget := filepath.Join(tmp, "new")
	mkPackage(t, oldTarget, `{"name":"old"}`)
	mkPackage(t, newTarget, `{"name":"new"}`)

	tests := []struct {
		name  string
		setup func(link string)
	}{
		{"symlink", func(link string) {
			if err := CreateLink(oldTarget, link); err != nil {
				t.Fatal(err)
			}
		}},
		{"directory", func(link string) { mkPackage(t, link, `{"name":"installed"}`) }},
		{"file", func(link string) {
			if err := os.WriteFile(link, []byte("x"), 0644); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := filepath.Join(tmp, "replace-"+tt.name)
			tt.setup(link)

			if err := CreateLink(newTarget, link); err != nil {
				t.Fatalf("CreateLink failed: %v", err)
			}
			got, err := ReadLink(link)
			if err != nil {
				t.Fatalf("ReadLink failed: %v", err)
			}
			if got != newTarget {
				t.Errorf("link points at %q, want %q", got, newTarget)
			}
		})
	}
}

func TestRemoveLink(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "pkg")
	mkPackage(t, target, `{"name":"pkg"}`)

	link := filepath.Join(tmp, "link")
	if err := CreateLink(target, link); err != nil {
		t.Fatal(err)
	}

	if err := RemoveLink(link); err != nil {
		t.Fatalf("RemoveLink failed: %v", err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Error("link still exists after RemoveLink")
	}
	if _, err := os.Stat(filepath.Join(target, "package.json")); err != nil {
		t.Error("RemoveLink must not touch the link target")
	}

	if err := RemoveLink(filepath.Join(tmp, "missing")); err != nil {
		t.Errorf("RemoveLink on missing path: %v", err)
	}
}

func TestIsLink(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "pkg")
	mkPackage(t, target, `{"name":"pkg"}`)
	link := filepath.Join(tmp, "link")
	if err := CreateLink(target, link); err != nil {
		t.Fatal(err)
	}

	if !IsLink(link) {
		t.Error("IsLink(link) = false")
	}
	if IsLink(target) {
		t.Error("IsLink(dir) = true")
	}
}

func TestIsSymlinkSupported(t *testing.T) {
	result := IsSymlinkSupported()
	if runtime.GOOS != "windows" && !result {
		t.Error("IsSymlinkSupported returned false on Unix")
	}
}

func TestCreateLinkThroughSymlinkedParent(t *testing.T) {
	tmp := realTempDir(t)
	target := filepath.Join(tmp, "global", "lib", "node_modules", "a")
	mkPackage(t, target, `{"name":"a"}`)

	// The project is reached through an alias that sits at a different
	// depth than the directory it points at.
	real := filepath.Join(tmp, "x", "y", "work")
	if err := os.MkdirAll(filepath.Join(real, "my-project"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(real, filepath.Join(tmp, "alias")); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(tmp, "alias", "my-project", "node_modules", "a")
	if err := CreateLink(target, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		t.Fatalf("link does not resolve: %v", err)
	}
	if resolved != target {
		t.Errorf("link resolves to %q, want %q", resolved, target)
	}
	got, err := ReadLink(link)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("ReadLink = %q, want %q", got, target)
	}

	if err := CreateLink(target, link); err != nil {
		t.Fatalf("second CreateLink failed: %v", err)
	}
}

func TestCreateLinkOntoTargetItself(t *testing.T) {
	tmp := realTempDir(t)
	dir := filepath.Join(tmp, "store", "my-project")
	mkPackage(t, dir, `{"name":"my-project"}`)

	if err := CreateLink(dir, dir); err != nil {
		t.Fatalf("CreateLink onto its own target: %v", err)
	}
	if IsLink(dir) {
		t.Error("directory was replaced by a link")
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
		t.Errorf("directory contents lost: %v", err)
	}
}

func TestCreateLinkRefusesDirectoryHoldingTarget(t *testing.T) {
	tmp := realTempDir(t)
	link := filepath.Join(tmp, "store", "pkg")
	target := filepath.Join(link, "packages", "inner")
	mkPackage(t, target, `{"name":"inner"}`)

	err := CreateLink(target, link)
	if !errors.Is(err, ErrTargetInsideLink) {
		t.Fatalf("err = %v, want ErrTargetInsideLink", err)
	}
	if _, err := os.Stat(filepath.Join(target, "package.json")); err != nil {
		t.Errorf("target removed: %v", err)
	}
}
