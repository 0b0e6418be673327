package cli

import (
	"fmt"
	"strconv"

	"github.com/agentx-labs/pkglink/internal/branding"
	"github.com/agentx-labs/pkglink/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write ` + branding.DisplayName() + ` configuration stored at ~/` + branding.HomeDir() + `/config.yaml.

Keys: prefix, global-prefix, install-links. Each can also be set with a
` + branding.EnvPrefix() + `_ environment variable, e.g. ` + branding.EnvVar("GLOBAL_PREFIX") + `.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the resolved configuration and derived paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s = %s\n", config.KeyPrefix, cfg.Prefix)
		fmt.Fprintf(out, "%s = %s\n", config.KeyGlobalPrefix, cfg.GlobalPrefix)
		fmt.Fprintf(out, "%s = %s\n", config.KeyInstallLinks, strconv.FormatBool(cfg.InstallLinks))
		fmt.Fprintf(out, "; global store: %s\n", cfg.GlobalDir())
		fmt.Fprintf(out, "; global bin:   %s\n", cfg.GlobalBinDir())
		fmt.Fprintf(out, "; local store:  %s\n", cfg.LocalDir())
		fmt.Fprintf(out, "; config file:  %s\n", config.FilePath())
		return nil
	},
}
