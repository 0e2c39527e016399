package commands

import (
	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/buildinfo"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel   string
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "flujo",
		Short:   "Bank statement classification and cash-flow reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides flujo.yaml and FLUJO_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <repo>/flujo.yaml)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newClassifyCommand(opts))
	rootCmd.AddCommand(newReconcileCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}
