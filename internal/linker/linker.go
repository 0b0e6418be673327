package linker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/agentx-labs/pkglink/internal/install"
	"github.com/agentx-labs/pkglink/internal/logging"
	"github.com/agentx-labs/pkglink/internal/manifest"
	"github.com/agentx-labs/pkglink/internal/platform"
	"github.com/agentx-labs/pkglink/internal/spec"
	"github.com/agentx-labs/pkglink/internal/store"
	"github.com/agentx-labs/pkglink/internal/tree"
	"github.com/rs/zerolog"
)

// Linker runs link invocations. The zero value is usable: it installs
// with the production router, reads trees from disk and reports nothing.
type Linker struct {
	Installer install.Installer
	Loader    tree.Loader
	Reporter  Reporter
	Logger    *zerolog.Logger
}

// Link establishes the links requested by args.
//
// With no args the project at cfg.Prefix is linked into the global store,
// along with its bin entries. Otherwise every arg is classified, then in
// order installed into the global store when needed and linked into the
// project's node_modules. A failure stops the invocation; links created
// before it stay in place and the returned Result lists them.
func (l *Linker) Link(ctx context.Context, cfg config.Config, args []string) (*Result, error) {
	if cfg.Global {
		return nil, ErrGlobal
	}

	log := l.logger()
	mode := ModeFor(args)
	done := logging.LogOperationStart(log, "link "+mode.String())
	defer done()

	var (
		res       *Result
		err       error
		reportDir string
	)
	switch mode {
	case ModeSelfToGlobal:
		res, err = l.linkSelf(cfg)
		reportDir = cfg.GlobalLibDir()
	default:
		res, err = l.linkLocal(ctx, cfg, args)
		reportDir = cfg.ProjectDir()
	}
	if err != nil {
		return res, err
	}

	t, err := l.loader().Load(reportDir)
	if err != nil {
		return res, fmt.Errorf("loading linked tree: %w", err)
	}
	if err := verify(t, res.Links); err != nil {
		return res, err
	}

	if l.Reporter != nil {
		if err := l.Reporter.Report(t); err != nil {
			return res, fmt.Errorf("reporting links: %w", err)
		}
	}
	return res, nil
}

// Completion lists the entries of the global store, for shell completion
// of link arguments.
func Completion(loc StoreLocator) ([]string, error) {
	return store.New(loc.GlobalDir()).Entries()
}

// linkSelf links the project into the global store, then its executables
// into the global bin directory.
func (l *Linker) linkSelf(cfg config.Config) (*Result, error) {
	log := l.logger()
	res := &Result{Mode: ModeSelfToGlobal}

	pkg, err := manifest.ReadDir(cfg.ProjectDir())
	if err != nil {
		return res, fmt.Errorf("reading project package: %w", err)
	}
	if err := spec.ValidateName(pkg.Name); err != nil {
		return res, fmt.Errorf("project package: %w", err)
	}

	st := store.New(cfg.GlobalDir())
	entry := st.Path(pkg.Name)
	if err := platform.CreateLink(cfg.ProjectDir(), entry); err != nil {
		return res, &LinkError{Op: "link", Path: entry, Err: err}
	}
	if inPlace(entry, cfg.ProjectDir()) {
		log.Info().Str("package", pkg.PkgID()).Str("path", entry).Msg("Project already lives in the global store")
	} else {
		res.Links = append(res.Links, Link{Name: pkg.Name, Path: entry, Target: cfg.ProjectDir()})
		log.Info().Str("package", pkg.PkgID()).Str("path", entry).Msg("Linked project into global store")
	}

	for _, exe := range pkg.Executables() {
		script := filepath.Join(entry, filepath.FromSlash(exe.Script))
		bin := filepath.Join(cfg.GlobalBinDir(), exe.Name)

		if err := platform.MakeExecutable(script); err != nil {
			if !os.IsNotExist(err) {
				return res, &LinkError{Op: "chmod", Path: script, Err: err}
			}
			log.Warn().Str("bin", exe.Name).Str("script", exe.Script).Msg("Bin script does not exist")
		}
		if err := platform.CreateLink(script, bin); err != nil {
			return res, &LinkError{Op: "link", Path: bin, Err: err}
		}
		log.Debug().Str("bin", exe.Name).Str("path", bin).Msg("Linked executable")
	}
	return res, nil
}

// linkLocal links each specifier's global entry into the project.
func (l *Linker) linkLocal(ctx context.Context, cfg config.Config, args []string) (*Result, error) {
	log := l.logger()
	res := &Result{Mode: ModeGlobalToLocal}

	ids, err := spec.ParseAll(args, cfg.ProjectDir())
	if err != nil {
		return res, err
	}

	st := store.New(cfg.GlobalDir())
	dest := install.Destination{Prefix: cfg.GlobalPrefix, Dir: cfg.GlobalDir()}
	installer := l.installer(cfg)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name, err := ensureGlobal(ctx, log, installer, st, dest, id)
		if err != nil {
			return res, err
		}

		target := st.Path(name)
		local := filepath.Join(cfg.LocalDir(), filepath.FromSlash(name))
		if err := platform.CreateLink(target, local); err != nil {
			return res, &LinkError{Op: "link", Path: local, Err: err}
		}
		if inPlace(local, target) {
			log.Info().Str("package", name).Str("path", local).Msg("Project directory is the global store")
			continue
		}
		res.Links = append(res.Links, Link{Name: name, Path: local, Target: target})
		log.Info().Str("package", name).Str("path", local).Msg("Linked global package")
	}
	return res, nil
}

// ensureGlobal makes sure the store holds an entry for id and returns the
// name it is stored under.
func ensureGlobal(ctx context.Context, log zerolog.Logger, installer install.Installer, st *store.Store, dest install.Destination, id spec.Identity) (string, error) {
	p, err := st.Check(id)
	if err != nil {
		return "", &install.Error{Spec: id.Raw, Err: err}
	}
	if p.Satisfies {
		log.Debug().Str("package", id.Name).Str("version", p.Version).Msg("Using existing global entry")
		return id.Name, nil
	}

	log.Info().Str("spec", id.Raw).Str("reason", p.Reason).Msg("Installing into global store")
	r, err := installer.Install(ctx, id, dest)
	if err != nil {
		var ie *install.Error
		if errors.As(err, &ie) {
			return "", err
		}
		return "", &install.Error{Spec: id.Raw, Err: err}
	}

	name := id.Name
	if r != nil {
		if r.Name != "" {
			name = r.Name
		}
		log.Debug().Str("package", name).Str("path", r.Path).Bool("linked", r.Linked).Msg("Installed into global store")
	}
	if err := spec.ValidateName(name); err != nil {
		return "", &install.Error{Spec: id.Raw, Err: fmt.Errorf("installer reported an unusable name: %w", err)}
	}
	if !st.Has(name) {
		return "", &install.Error{Spec: id.Raw, Err: fmt.Errorf("%s is missing from the global store after install", name)}
	}
	return name, nil
}

// inPlace reports whether path is the real directory target itself, which
// happens when a project sits inside the store it is linked into.
func inPlace(path, target string) bool {
	if platform.IsLink(path) {
		return false
	}
	a, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	b, err := filepath.EvalSymlinks(target)
	return err == nil && a == b
}

// verify checks that every created link resolves to its target in t.
func verify(t *tree.Tree, links []Link) error {
	for _, lk := range links {
		want, err := filepath.EvalSymlinks(lk.Target)
		if err != nil {
			return &LinkError{Op: "verify", Path: lk.Path, Err: err}
		}
		n := t.Get(lk.Path)
		switch {
		case n == nil:
			return &LinkError{Op: "verify", Path: lk.Path, Err: errors.New("link is missing from the loaded tree")}
		case !n.IsLink || n.Target == nil:
			return &LinkError{Op: "verify", Path: lk.Path, Err: errors.New("entry is not a resolvable link")}
		case n.RealPath != want:
			return &LinkError{Op: "verify", Path: lk.Path, Err: fmt.Errorf("resolves to %s, want %s", n.RealPath, want)}
		}
	}
	return nil
}

func (l *Linker) installer(cfg config.Config) install.Installer {
	if l.Installer != nil {
		return l.Installer
	}
	return install.NewRouter(install.Options{CopyDirectories: cfg.InstallLinks})
}

func (l *Linker) loader() tree.Loader {
	if l.Loader != nil {
		return l.Loader
	}
	return tree.FSLoader{}
}

func (l *Linker) logger() zerolog.Logger {
	if l.Logger != nil {
		return *l.Logger
	}
	return logging.GetLogger("linker")
}
