package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/pkglink/internal/platform"
	"github.com/agentx-labs/pkglink/internal/spec"
)

// excludedNames are files/directories excluded when copying a package.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// DirectoryInstaller places a local package directory into the store.
// By default the store entry is a symlink to the source, so edits to the
// source are visible through every project that links it.
type DirectoryInstaller struct {
	// Copy copies the source tree instead of linking it.
	Copy bool
}

// Install links or copies id.Path to the store entry for id.Name.
func (d *DirectoryInstaller) Install(ctx context.Context, id spec.Identity, dest Destination) (*Result, error) {
	if id.Kind != spec.KindDirectory {
		return nil, fmt.Errorf("%s is not a directory specifier", id.Raw)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := dest.EntryPath(id.Name)
	if sameDir(id.Path, entry) {
		// The source already is the store entry.
		return &Result{Name: id.Name, Path: entry}, nil
	}
	if !d.Copy {
		if err := platform.CreateLink(id.Path, entry); err != nil {
			return nil, fmt.Errorf("linking %s to %s: %w", entry, id.Path, err)
		}
		return &Result{Name: id.Name, Path: entry, Linked: true}, nil
	}

	if holds(entry, id.Path) {
		return nil, fmt.Errorf("copying %s into %s: %w", id.Path, entry, platform.ErrTargetInsideLink)
	}
	// Remove any existing entry to ensure a clean copy.
	if err := platform.RemoveLink(entry); err != nil {
		return nil, fmt.Errorf("removing existing installation at %s: %w", entry, err)
	}
	if err := copyDir(id.Path, entry); err != nil {
		return nil, fmt.Errorf("copying %s to %s: %w", id.Path, entry, err)
	}
	return &Result{Name: id.Name, Path: entry}, nil
}

// sameDir reports whether a and b resolve to the same existing directory.
func sameDir(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	return err == nil && ra == rb
}

// holds reports whether entry is a real directory containing path.
func holds(entry, path string) bool {
	info, err := os.Lstat(entry)
	if err != nil || info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		return false
	}
	re, err := filepath.EvalSymlinks(entry)
	if err != nil {
		return false
	}
	rp, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(re, rp)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and other special files are skipped.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}
