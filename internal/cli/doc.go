// Package cli defines the Cobra command tree for the pkglink CLI. Each file
// in this package registers one top-level command (link, config, version)
// with the root command. Command implementations delegate to internal
// packages for the work and only handle flags, configuration and output.
package cli
