package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
	plain      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "n8nctl",
		Short:         "n8nctl bootstraps and operates a self-hosted n8n deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "n8nctl.yaml", "Path to configuration file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "Disable the interactive progress display")

	cmd.AddCommand(newBootstrapCmd(flags))
	cmd.AddCommand(newWorkflowsCmd(flags))
	cmd.AddCommand(newResetCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
