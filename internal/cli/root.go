package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/agentx-labs/pkglink/internal/branding"
	"github.com/agentx-labs/pkglink/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` links packages between the global package store and a project.

Run "link" inside a package to make it available globally, or "link <pkg>"
inside a project to use a globally available package from node_modules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogger(cmd.ErrOrStderr(), verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log output (repeat for more)")
}

// Execute runs the root command with build info injected via ldflags.
// An interrupt cancels the running command.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
