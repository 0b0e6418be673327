package install

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/agentx-labs/pkglink/internal/spec"
)

// Destination is the global install location.
type Destination struct {
	Prefix string // global prefix, e.g. /usr/local
	Dir    string // package store, e.g. /usr/local/lib/node_modules
}

// EntryPath returns the store path for a package name.
func (d Destination) EntryPath(name string) string {
	return filepath.Join(d.Dir, filepath.FromSlash(name))
}

// Result describes a completed installation.
type Result struct {
	Name   string // package name as placed in the store
	Path   string // store entry path
	Linked bool   // the entry is a link back to the source directory
}

// Installer materializes one identity into the global store. Install
// returns only after the store entry is complete or the attempt failed.
type Installer interface {
	Install(ctx context.Context, id spec.Identity, dest Destination) (*Result, error)
}

// Error reports a failed installation of one specifier.
type Error struct {
	Spec string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("installing %s into the global store: %v", e.Spec, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Router sends each identity to the installer for its kind.
type Router struct {
	Directory Installer // handles spec.KindDirectory
	Package   Installer // handles spec.KindName and spec.KindRemote
}

// Options configures NewRouter.
type Options struct {
	// CopyDirectories copies directory sources into the store instead of
	// linking them.
	CopyDirectories bool
	// NPM overrides the npm installer, mainly for tests.
	NPM *NPMInstaller
}

// NewRouter returns the production installer.
func NewRouter(opts Options) *Router {
	npm := opts.NPM
	if npm == nil {
		npm = &NPMInstaller{}
	}
	return &Router{
		Directory: &DirectoryInstaller{Copy: opts.CopyDirectories},
		Package:   npm,
	}
}

// Install dispatches id by kind.
func (r *Router) Install(ctx context.Context, id spec.Identity, dest Destination) (*Result, error) {
	var target Installer
	switch id.Kind {
	case spec.KindDirectory:
		target = r.Directory
	case spec.KindName, spec.KindRemote:
		target = r.Package
	}
	if target == nil {
		return nil, fmt.Errorf("no installer configured for %s specifiers", id.Kind)
	}
	return target.Install(ctx, id, dest)
}
