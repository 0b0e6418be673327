package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/pkglink/internal/branding"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys. Flag names use the same spelling so cobra flags bind
// directly onto them.
const (
	KeyPrefix       = "prefix"
	KeyGlobalPrefix = "global-prefix"
	KeyGlobal       = "global"
	KeyInstallLinks = "install-links"
)

// Keys lists every key Set and Get accept.
var Keys = []string{KeyPrefix, KeyGlobalPrefix, KeyGlobal, KeyInstallLinks}

// Config is the resolved configuration for one invocation.
type Config struct {
	// Prefix is the project root whose node_modules receives local links.
	Prefix string
	// GlobalPrefix is the root of the global install location.
	GlobalPrefix string
	// Global is the explicit "operate globally" flag. Linking rejects it.
	Global bool
	// InstallLinks copies directory specs into the global store instead
	// of linking them there.
	InstallLinks bool
}

// GlobalLibDir returns <globalPrefix>/lib.
func (c Config) GlobalLibDir() string {
	return filepath.Join(c.GlobalPrefix, "lib")
}

// GlobalDir returns the global package store, <globalPrefix>/lib/node_modules.
func (c Config) GlobalDir() string {
	return filepath.Join(c.GlobalLibDir(), "node_modules")
}

// GlobalBinDir returns the directory linked executables are placed in.
func (c Config) GlobalBinDir() string {
	return filepath.Join(c.GlobalPrefix, "bin")
}

// ProjectDir returns the project root.
func (c Config) ProjectDir() string {
	return c.Prefix
}

// LocalDir returns the project's dependency directory, <prefix>/node_modules.
func (c Config) LocalDir() string {
	return filepath.Join(c.Prefix, "node_modules")
}

// Dir returns the path to the config directory (~/.pkglink/).
// PKGLINK_HOME overrides the location.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.pkglink/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// newViper returns a viper instance reading the config file and environment.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(FilePath()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", FilePath(), err)
		}
	}
	return v, nil
}

// Load resolves the configuration. Flags, when non-nil, take precedence
// over environment and file values. Empty prefixes are filled from the
// environment: the project root is the nearest ancestor of the working
// directory that looks like a package, the global prefix is derived from
// the node installation.
func Load(flags *pflag.FlagSet) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %q: %w", key, err)
				}
			}
		}
	}

	cfg := Config{
		Prefix:       v.GetString(KeyPrefix),
		GlobalPrefix: v.GetString(KeyGlobalPrefix),
		Global:       v.GetBool(KeyGlobal),
		InstallLinks: v.GetBool(KeyInstallLinks),
	}

	if cfg.Prefix == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("getting current directory: %w", err)
		}
		cfg.Prefix = FindProjectRoot(cwd)
	}
	if cfg.GlobalPrefix == "" {
		cfg.GlobalPrefix = DefaultGlobalPrefix()
	}

	if cfg.Prefix, err = filepath.Abs(cfg.Prefix); err != nil {
		return Config{}, fmt.Errorf("resolving prefix: %w", err)
	}
	if cfg.GlobalPrefix, err = filepath.Abs(cfg.GlobalPrefix); err != nil {
		return Config{}, fmt.Errorf("resolving global prefix: %w", err)
	}

	return cfg, nil
}

// Get returns a config value by key from the file and environment.
// Returns an empty string if not set.
func Get(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	v, err := newViper()
	if err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	v, err := newViper()
	if err != nil {
		return err
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func validKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
