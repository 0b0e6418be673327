package install

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentx-labs/pkglink/internal/logging"
	"github.com/agentx-labs/pkglink/internal/spec"
	"github.com/rs/zerolog"
)

// NPMInstaller installs name and remote specifiers into the global store
// by running `npm install --global --prefix <prefix> <spec>`.
type NPMInstaller struct {
	// Command is the npm executable. Defaults to "npm" looked up on PATH.
	Command string
	// Stdout and Stderr receive npm's output; defaults to io.Discard and
	// os.Stderr. Stderr is also captured for error messages.
	Stdout io.Writer
	Stderr io.Writer
	// Logger defaults to the "install" component logger.
	Logger *zerolog.Logger
}

// Install runs npm for id and checks that the store entry appeared.
//
// The name of an unaliased remote source is only a guess taken from its
// URL. The store is listed before and after npm runs, and when exactly
// one entry was added or rewritten that entry's name is reported instead.
func (n *NPMInstaller) Install(ctx context.Context, id spec.Identity, dest Destination) (*Result, error) {
	command := n.Command
	if command == "" {
		command = "npm"
	}
	bin, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("installing %s requires npm: %w", id.Raw, err)
	}

	stdout := n.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := n.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	installSpec := id.InstallSpec()
	args := []string{"install", "--global", "--prefix", dest.Prefix, installSpec}
	before := listEntries(dest.Dir)

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	log := n.logger()
	logging.LogCommand(log, bin, args)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderrBuf.String())
		if msg != "" {
			return nil, fmt.Errorf("npm install %s: %w: %s", installSpec, err, lastLine(msg))
		}
		return nil, fmt.Errorf("npm install %s: %w", installSpec, err)
	}

	name := id.Name
	if id.Kind == spec.KindRemote && !id.Aliased {
		if changed := changedEntries(before, listEntries(dest.Dir)); len(changed) == 1 && changed[0] != name {
			log.Debug().Str("guessed", name).Str("installed", changed[0]).Msg("Remote package installed under another name")
			name = changed[0]
		}
	}

	entry := dest.EntryPath(name)
	if _, err := os.Lstat(entry); err != nil {
		return nil, fmt.Errorf("npm install %s did not create %s", installSpec, entry)
	}

	return &Result{Name: name, Path: entry}, nil
}

func (n *NPMInstaller) logger() zerolog.Logger {
	if n.Logger != nil {
		return *n.Logger
	}
	return logging.GetLogger("install")
}

// listEntries maps every package name in the store at dir, scoped names
// included, to the modification time of its entry.
func listEntries(dir string) map[string]time.Time {
	entries := make(map[string]time.Time)
	var scan func(sub, prefix string)
	scan = func(sub, prefix string) {
		des, err := os.ReadDir(sub)
		if err != nil {
			return
		}
		for _, de := range des {
			name := de.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if prefix == "" && strings.HasPrefix(name, "@") {
				scan(filepath.Join(sub, name), name+"/")
				continue
			}
			if info, err := de.Info(); err == nil {
				entries[prefix+name] = info.ModTime()
			}
		}
	}
	scan(dir, "")
	return entries
}

// changedEntries returns the names in after that are missing from before
// or carry a different modification time.
func changedEntries(before, after map[string]time.Time) []string {
	var names []string
	for name, mod := range after {
		if prev, ok := before[name]; !ok || !prev.Equal(mod) {
			names = append(names, name)
		}
	}
	return names
}

// lastLine returns the final line of s, which for npm is the summary error.
func lastLine(s string) string {
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
