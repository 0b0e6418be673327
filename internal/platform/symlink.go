package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrSymlinkUnsupported is returned on Windows when the process is not
// allowed to create symbolic links.
var ErrSymlinkUnsupported = errors.New("symlinks are not available: enable Developer Mode or run elevated")

// ErrTargetInsideLink is returned when the entry to replace is a directory
// holding the link target.
var ErrTargetInsideLink = errors.New("entry contains the link target")

// CreateLink makes link a symbolic link pointing at target.
//
// Missing parent directories of link are created. An existing entry at link
// is replaced unless it already resolves to target, in which case CreateLink
// does nothing. A real directory that holds target is never replaced. On
// Unix the stored target is relative to the link's resolved parent
// directory, so a linked tree can be moved as a whole.
func CreateLink(target, link string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving link target %s: %w", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", link, err)
	}

	realTarget, targetErr := filepath.EvalSymlinks(absTarget)
	if targetErr != nil {
		realTarget = absTarget
	}

	if info, err := os.Lstat(link); err == nil {
		if realLink, err := filepath.EvalSymlinks(link); err == nil {
			if realLink == realTarget {
				return nil
			}
			if info.Mode()&os.ModeSymlink == 0 && within(realTarget, realLink) {
				return fmt.Errorf("replacing %s: %w", link, ErrTargetInsideLink)
			}
		}
		if err := RemoveLink(link); err != nil {
			return fmt.Errorf("replacing existing entry %s: %w", link, err)
		}
	}

	stored := absTarget
	if targetErr == nil {
		stored = linkText(realTarget, link)
	}
	if err := os.Symlink(stored, link); err != nil {
		if runtime.GOOS == "windows" && !IsSymlinkSupported() {
			return fmt.Errorf("linking %s: %w", link, ErrSymlinkUnsupported)
		}
		return err
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RemoveLink removes whatever occupies path: a symlink, a file, or a
// directory tree. A missing path is not an error.
func RemoveLink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		return os.Remove(path)
	}
	return os.RemoveAll(path)
}

// ReadLink returns the absolute target of the symlink at path. Relative
// link text is resolved against the link's parent directory with its
// symlinks resolved, the way the kernel follows it. Only one level of
// indirection is followed.
func ReadLink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(realDir(filepath.Dir(path)), target)
	}
	return filepath.Clean(target), nil
}

// IsLink reports whether path exists and is a symbolic link.
func IsLink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// IsSymlinkSupported returns true if the current platform supports native symlinks.
// On Windows this attempts a test symlink to check developer mode.
func IsSymlinkSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}

	tmpDir := os.TempDir()
	link := filepath.Join(tmpDir, ".pkglink-symlink-test")
	defer os.Remove(link)

	return os.Symlink(tmpDir, link) == nil
}

// linkText returns the text stored in the symlink at link for realTarget.
// The relative form starts from the resolved parent of link, since that is
// where the kernel resolves ".." segments from.
func linkText(realTarget, link string) string {
	if runtime.GOOS == "windows" {
		return realTarget
	}
	rel, err := filepath.Rel(realDir(filepath.Dir(link)), realTarget)
	if err != nil {
		return realTarget
	}
	return rel
}

func realDir(dir string) string {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		return real
	}
	return dir
}
