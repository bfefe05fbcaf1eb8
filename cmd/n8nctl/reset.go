package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/store"
)

// resetTables are deleted in dependency order so foreign keys never block.
var resetTables = []string{"project_relation", "project", "user"}

func newResetCmd(root *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the seeded account data and flush Redis",
		Long: "Deletes the seeded user, project and project-relation rows and flushes " +
			"the Redis database. All account data is lost.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ParseConfig(root.configPath)
			if err != nil {
				return err
			}

			if !force {
				confirmed, err := confirmReset(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			return runReset(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}

func confirmReset(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "This deletes all seeded account data. Type \"reset\" to continue: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.TrimSpace(line) == "reset", nil
}

func runReset(ctx context.Context, cfg *config.Config, out io.Writer) error {
	querier, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, table := range resetTables {
		affected, err := querier.Exec(ctx, `DELETE FROM `+store.QuoteIdent(table))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %d row(s) from %s\n", affected, table)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	if err := redisClient.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("flush redis: %w", err)
	}
	fmt.Fprintln(out, "flushed redis")

	return nil
}
