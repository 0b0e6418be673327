package cli

import (
	"path/filepath"
	"strings"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/agentx-labs/pkglink/internal/install"
	"github.com/agentx-labs/pkglink/internal/linker"
	"github.com/agentx-labs/pkglink/internal/report"
	"github.com/agentx-labs/pkglink/internal/spec"
	"github.com/agentx-labs/pkglink/internal/store"
	"github.com/spf13/cobra"
)

var linkJSON bool

func init() {
	f := linkCmd.Flags()
	f.BoolP(config.KeyGlobal, "g", false, "Operate on the global store (rejected by link)")
	f.String(config.KeyPrefix, "", "Project root (default: nearest directory with package.json or node_modules)")
	f.String(config.KeyGlobalPrefix, "", "Global install prefix (default: derived from the node executable)")
	f.Bool(config.KeyInstallLinks, false, "Copy directory packages into the global store instead of linking them")
	f.BoolVar(&linkJSON, "json", false, "Print the resulting links as JSON")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:     "link [spec...]",
	Aliases: []string{"ln"},
	Short:   "Link packages between the global store and this project",
	Long: `Without arguments, link the current package into the global store so it
can be used from any project, and link its bin entries into <global-prefix>/bin.

With arguments, link each package from the global store into this project's
node_modules. Packages missing from the global store, or whose version does
not satisfy the requested range, are installed there first. Directory specs
(file:../pkg, ./pkg) are always installed.

Example:
  pkglink link
  pkglink link lodash @types/node
  pkglink link lodash@^4.17.0
  pkglink link file:../my-lib`,
	ValidArgsFunction: completeLink,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		l := &linker.Linker{
			Installer: install.NewRouter(install.Options{
				CopyDirectories: cfg.InstallLinks,
				NPM: &install.NPMInstaller{
					Stdout: cmd.ErrOrStderr(),
					Stderr: cmd.ErrOrStderr(),
				},
			}),
			Reporter: &report.Printer{Out: cmd.OutOrStdout(), JSON: linkJSON},
		}
		_, err = l.Link(cmd.Context(), cfg, args)
		return err
	},
}

// completeLink offers global store entries. A word of the form "@scope/"
// completes to the packages inside that scope.
func completeLink(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	if scope := (spec.Identity{Name: toComplete}).Scope(); scope != "" && strings.Contains(toComplete, "/") {
		names, err := store.New(filepath.Join(cfg.GlobalDir(), scope)).Entries()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		words := make([]string, 0, len(names))
		for _, n := range names {
			words = append(words, scope+"/"+n)
		}
		return words, cobra.ShellCompDirectiveNoFileComp
	}

	words, err := linker.Completion(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return words, cobra.ShellCompDirectiveNoFileComp
}
