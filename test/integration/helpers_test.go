//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/agentx-labs/pkglink/internal/install"
	"github.com/agentx-labs/pkglink/internal/linker"
	"github.com/agentx-labs/pkglink/internal/report"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir      string // PKGLINK_HOME, holds config.yaml
	GlobalPrefix string // PKGLINK_GLOBAL_PREFIX, global store lives under lib/node_modules
	Root         string // parent of the project and any sibling source packages
	ProjectDir   string // PKGLINK_PREFIX, the project being linked into
}

// setupTestEnv creates isolated temp directories and points the pkglink
// environment variables at them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{
		HomeDir:      filepath.Join(root, "home"),
		GlobalPrefix: filepath.Join(root, "global"),
		Root:         root,
		ProjectDir:   filepath.Join(root, "my-project"),
	}

	t.Setenv("PKGLINK_HOME", env.HomeDir)
	t.Setenv("PKGLINK_GLOBAL_PREFIX", env.GlobalPrefix)
	t.Setenv("PKGLINK_PREFIX", env.ProjectDir)
	t.Setenv("PKGLINK_GLOBAL", "")
	t.Setenv("PKGLINK_INSTALL_LINKS", "")

	writeFile(t, filepath.Join(env.ProjectDir, "package.json"), `{
  "name": "my-project",
  "version": "1.0.0"
}
`)
	return env
}

// storeDir is the global package store.
func (e *testEnv) storeDir() string {
	return filepath.Join(e.GlobalPrefix, "lib", "node_modules")
}

// localDir is the project's node_modules.
func (e *testEnv) localDir() string {
	return filepath.Join(e.ProjectDir, "node_modules")
}

// link loads configuration from the environment and runs one link
// invocation from dir, returning the reporter output.
func link(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(prev)

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	var out bytes.Buffer
	l := &linker.Linker{
		Installer: install.NewRouter(install.Options{CopyDirectories: cfg.InstallLinks}),
		Reporter:  &report.Printer{Out: &out},
	}
	_, err = l.Link(context.Background(), cfg, args)
	return out.String(), err
}

func writePackage(t *testing.T, dir, name, version string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "`+name+`", "version": "`+version+`"}`)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s not to exist", path)
	}
}

// assertLink checks that path is a symlink resolving to want.
func assertLink(t *testing.T, path, want string) {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("expected link at %s: %v", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("%s is not a symlink", path)
	}
	got, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("resolving %s: %v", path, err)
	}
	if got != want {
		t.Errorf("%s resolves to %s, want %s", path, got, want)
	}
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("expected %s to contain %q, got:\n%s", path, substr, string(data))
	}
}
