// Package command contains the CLI command constructors.
package command

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/product_api/internal/config"
)

// RootCommand instantiates the root command, with all sub-commands bound.
// Running it without a sub-command starts the server.
func RootCommand() *cobra.Command {
	opts := config.DefaultOptions()

	cmd := &cobra.Command{
		Use:          "server [command] [flags]",
		Short:        "Product catalog REST API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.YAMLFile, "config", "c", opts.YAMLFile, "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "path to a .env file")

	cmd.AddCommand(
		serveCommand(&opts),
		hashPasswordCommand(),
	)

	return cmd
}
