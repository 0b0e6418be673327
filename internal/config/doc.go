// Package config resolves the settings a link operation runs with: the
// project root, the global prefix, and the --global flag. Values come from
// command-line flags, PKGLINK_* environment variables and the optional
// user config file at ~/.pkglink/config.yaml, in that order of precedence.
package config
