// Package doctor checks that the environment can support linking: the
// tools installs delegate to, symlink support, the global store layout,
// and links left dangling in the store or the project.
package doctor

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/agentx-labs/pkglink/internal/platform"
	"github.com/agentx-labs/pkglink/internal/tree"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Doctor runs the checks and writes one line per finding to Out.
type Doctor struct {
	Out io.Writer
	// Fix creates missing directories and removes dangling links.
	Fix bool
	// LookPath finds executables; defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	problems int
}

// Run performs every check against cfg and returns the number of
// problems left unfixed.
func (d *Doctor) Run(cfg config.Config) int {
	d.problems = 0

	fmt.Fprintln(d.Out, "Tools:")
	d.checkTool("node", "needed to locate the default global prefix")
	d.checkTool("npm", "needed to install name and remote specs")

	fmt.Fprintln(d.Out, "Symlinks:")
	if platform.IsSymlinkSupported() {
		fmt.Fprintf(d.Out, "  %s symlinks can be created\n", green("[ OK ]"))
	} else {
		d.problems++
		fmt.Fprintf(d.Out, "  %s %v\n", red("[FAIL]"), platform.ErrSymlinkUnsupported)
	}

	fmt.Fprintln(d.Out, "Global store:")
	d.checkDir(cfg.GlobalDir())
	d.checkDir(cfg.GlobalBinDir())

	fmt.Fprintln(d.Out, "Links:")
	d.checkLinks(cfg.GlobalLibDir())
	d.checkLinks(cfg.ProjectDir())

	return d.problems
}

func (d *Doctor) checkTool(name, purpose string) {
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		d.problems++
		fmt.Fprintf(d.Out, "  %s %s not found on PATH (%s)\n", yellow("[MISS]"), name, purpose)
		return
	}
	fmt.Fprintf(d.Out, "  %s %s: %s\n", green("[ OK ]"), name, path)
}

func (d *Doctor) checkDir(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(d.Out, "  %s %s does not exist\n", yellow("[MISS]"), path)
		if !d.Fix {
			d.problems++
			return
		}
		if mkErr := os.MkdirAll(path, 0755); mkErr != nil {
			d.problems++
			fmt.Fprintf(d.Out, "  %s Could not create %s: %v\n", red("[FAIL]"), path, mkErr)
			return
		}
		fmt.Fprintf(d.Out, "  %s Created %s\n", cyan("[FIX ]"), path)
		return
	}
	if err != nil {
		d.problems++
		fmt.Fprintf(d.Out, "  %s %s: %v\n", red("[FAIL]"), path, err)
		return
	}
	if !info.IsDir() {
		d.problems++
		fmt.Fprintf(d.Out, "  %s %s exists but is not a directory\n", yellow("[WARN]"), path)
		return
	}
	fmt.Fprintf(d.Out, "  %s %s exists\n", green("[ OK ]"), path)
}

// checkLinks reports links under dir/node_modules whose target is gone.
func (d *Doctor) checkLinks(dir string) {
	if _, err := os.Stat(dir); err != nil {
		return // already reported, or nothing to check
	}
	t, err := tree.FSLoader{}.Load(dir)
	if err != nil {
		d.problems++
		fmt.Fprintf(d.Out, "  %s %v\n", red("[FAIL]"), err)
		return
	}

	valid, dangling := 0, 0
	for _, n := range t.Links() {
		if n.Target != nil {
			valid++
			continue
		}
		dangling++
		target, _ := os.Readlink(n.Path)
		fmt.Fprintf(d.Out, "  %s %s -> %s (target does not exist)\n", yellow("[WARN]"), n.Path, target)
		if !d.Fix {
			d.problems++
			continue
		}
		if rmErr := platform.RemoveLink(n.Path); rmErr != nil {
			d.problems++
			fmt.Fprintf(d.Out, "  %s Could not remove %s: %v\n", red("[FAIL]"), n.Path, rmErr)
			continue
		}
		fmt.Fprintf(d.Out, "  %s Removed %s\n", cyan("[FIX ]"), n.Path)
	}
	fmt.Fprintf(d.Out, "  %s %s: %d/%d links valid\n", green("[ OK ]"), dir, valid, valid+dangling)
}
