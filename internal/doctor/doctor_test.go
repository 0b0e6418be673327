package doctor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func foundAll(file string) (string, error) { return "/usr/bin/" + file, nil }

func fixture(t *testing.T) config.Config {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		Prefix:       filepath.Join(root, "app"),
		GlobalPrefix: filepath.Join(root, "global"),
	}
	for _, dir := range []string{cfg.LocalDir(), cfg.GlobalDir(), cfg.GlobalBinDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestRunHealthy(t *testing.T) {
	cfg := fixture(t)
	target := filepath.Join(cfg.GlobalDir(), "a")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(cfg.LocalDir(), "a")); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	d := &Doctor{Out: &out, LookPath: foundAll}
	if n := d.Run(cfg); n != 0 {
		t.Errorf("problems = %d, want 0\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), cfg.Prefix+": 1/1 links valid") {
		t.Errorf("missing link summary:\n%s", out.String())
	}
}

func TestRunMissingTools(t *testing.T) {
	cfg := fixture(t)
	var out bytes.Buffer
	d := &Doctor{Out: &out, LookPath: func(string) (string, error) { return "", errors.New("not found") }}

	if n := d.Run(cfg); n != 2 {
		t.Errorf("problems = %d, want 2\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "[MISS] npm not found on PATH") {
		t.Errorf("missing npm finding:\n%s", out.String())
	}
}

func TestRunDanglingLink(t *testing.T) {
	cfg := fixture(t)
	link := filepath.Join(cfg.LocalDir(), "gone")
	if err := os.Symlink(filepath.Join(cfg.GlobalDir(), "gone"), link); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	d := &Doctor{Out: &out, LookPath: foundAll}
	if n := d.Run(cfg); n != 1 {
		t.Errorf("problems = %d, want 1\n%s", n, out.String())
	}
	if _, err := os.Lstat(link); err != nil {
		t.Error("dangling link removed without --fix")
	}

	out.Reset()
	d.Fix = true
	if n := d.Run(cfg); n != 0 {
		t.Errorf("problems with fix = %d, want 0\n%s", n, out.String())
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Error("dangling link not removed with --fix")
	}
}

func TestRunCreatesMissingStore(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{Prefix: filepath.Join(root, "app"), GlobalPrefix: filepath.Join(root, "global")}

	var out bytes.Buffer
	d := &Doctor{Out: &out, LookPath: foundAll}
	if n := d.Run(cfg); n != 2 {
		t.Errorf("problems = %d, want 2\n%s", n, out.String())
	}

	d.Fix = true
	if n := d.Run(cfg); n != 0 {
		t.Errorf("problems with fix = %d, want 0\n%s", n, out.String())
	}
	if info, err := os.Stat(cfg.GlobalDir()); err != nil || !info.IsDir() {
		t.Errorf("global store not created: %v", err)
	}
}
