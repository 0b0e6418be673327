package cli

import (
	"fmt"

	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/agentx-labs/pkglink/internal/doctor"
	"github.com/spf13/cobra"
)

var doctorFix bool

func init() {
	f := doctorCmd.Flags()
	f.String(config.KeyPrefix, "", "Project root to check")
	f.String(config.KeyGlobalPrefix, "", "Global install prefix to check")
	f.BoolVar(&doctorFix, "fix", false, "Create missing store directories and remove dangling links")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the global store and project links",
	Long: `Run diagnostic checks: node and npm on PATH, symlink support, the global
store layout, and dangling links in the global store or the project.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		d := &doctor.Doctor{Out: cmd.OutOrStdout(), Fix: doctorFix}
		if n := d.Run(cfg); n > 0 {
			return fmt.Errorf("%d problem(s) found", n)
		}
		return nil
	},
}
