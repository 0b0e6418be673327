package config

import (
	"os"
	"os/exec"
	"path/filepath"
)

// fallbackGlobalPrefix is used when no node installation can be located.
const fallbackGlobalPrefix = "/usr/local"

// DefaultGlobalPrefix returns the global prefix when none is configured.
// It checks npm_config_prefix first, then the directory above the bin/
// directory holding the node executable, then falls back to /usr/local.
func DefaultGlobalPrefix() string {
	if v := os.Getenv("npm_config_prefix"); v != "" {
		return v
	}
	nodeBin, err := exec.LookPath("node")
	if err != nil {
		return fallbackGlobalPrefix
	}
	if resolved, err := filepath.EvalSymlinks(nodeBin); err == nil {
		nodeBin = resolved
	}
	return filepath.Dir(filepath.Dir(nodeBin))
}

// FindProjectRoot walks up from dir to the nearest directory containing a
// package.json or node_modules. If none is found, dir itself is returned.
func FindProjectRoot(dir string) string {
	for cur := dir; ; {
		for _, marker := range []string{"package.json", "node_modules"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
