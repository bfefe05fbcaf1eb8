package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/logger"
	"github.com/speesrl/n8nctl/internal/n8napi"
	"github.com/speesrl/n8nctl/internal/workflows"
)

func newWorkflowsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage workflows on the n8n instance",
	}

	cmd.AddCommand(newWorkflowsImportCmd(root))
	cmd.AddCommand(newWorkflowsExportCmd(root))
	cmd.AddCommand(newWorkflowsDeleteCmd(root))

	return cmd
}

func newWorkflowsImportCmd(root *rootFlags) *cobra.Command {
	var dir string
	var update bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import all JSON workflow files from a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, log, err := workflowsSetup(ctx, root)
			if err != nil {
				return err
			}

			if dir == "" {
				dir = cfg.Workflows.Dir
			}
			if dir == "" {
				return fmt.Errorf("no workflow directory: pass --dir or set workflows.dir in the config")
			}

			summary, err := workflows.NewImporter(client, log, dir, update).Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported: %d  updated: %d  skipped: %d  failed: %d\n",
				summary.Imported, summary.Updated, summary.Skipped, summary.Failed)
			for _, failure := range summary.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), " ✗ %s\n", failure)
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d workflow(s) failed to import", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of workflow JSON files (defaults to workflows.dir)")
	cmd.Flags().BoolVarP(&update, "update", "u", false, "Overwrite workflows that already exist")

	return cmd
}

func newWorkflowsExportCmd(root *rootFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all server-side workflows to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, log, err := workflowsSetup(ctx, root)
			if err != nil {
				return err
			}

			if dir == "" {
				dir = cfg.Workflows.Dir
			}
			if dir == "" {
				return fmt.Errorf("no workflow directory: pass --dir or set workflows.dir in the config")
			}

			written, err := workflows.Export(ctx, client, log, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d workflow(s) to %s\n", written, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Destination directory (defaults to workflows.dir)")

	return cmd
}

func newWorkflowsDeleteCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete the named workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, log, err := workflowsSetup(ctx, root)
			if err != nil {
				return err
			}

			if err := workflows.DeleteByName(ctx, client, log, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}

	return cmd
}

// workflowsSetup loads the config and prepares an authenticated client.
// Session login is preferred; an API key, when configured, is the fallback
// should login be rejected.
func workflowsSetup(ctx context.Context, root *rootFlags) (*config.Config, *n8napi.Client, *logger.Logger, error) {
	cfg, err := config.ParseConfig(root.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := newRunLogger(root.verbose)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := buildAPIClient(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := client.Login(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		if !client.HasAPIKey() {
			return nil, nil, nil, err
		}
		log.Error(err, "session login failed, continuing with API key")
	}

	return cfg, client, log, nil
}
