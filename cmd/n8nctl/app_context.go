package main

import (
	"context"
	"os"
	"strings"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/containerexec"
	"github.com/speesrl/n8nctl/internal/logger"
	"github.com/speesrl/n8nctl/internal/n8napi"
	"github.com/speesrl/n8nctl/internal/store"
)

// newRunLogger builds the logger every command shares.
func newRunLogger(verbose bool) (*logger.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true})
}

// buildStore selects the Querier implementation: a direct pgx pool when a DSN
// is configured, psql through the container runtime otherwise. The returned
// func releases whatever the store holds.
func buildStore(ctx context.Context, cfg *config.Config) (store.Querier, func(), error) {
	if cfg.Database.DSN != "" {
		pg, err := store.NewPgxStore(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	runner := containerexec.NewCLIRunner(cfg.Runtime.Binary)
	psql := store.NewPSQLStore(runner, cfg.Database.Container, cfg.Database.Name, cfg.Database.User)
	return psql, func() {}, nil
}

// buildAPIClient constructs the REST client, loading the API key file when
// one is configured.
func buildAPIClient(cfg *config.Config, log *logger.Logger) (*n8napi.Client, error) {
	var opts []n8napi.Option
	if cfg.N8N.APIKeyFile != "" {
		key, err := os.ReadFile(cfg.N8N.APIKeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, n8napi.WithAPIKey(strings.TrimSpace(string(key))))
	}
	return n8napi.NewClient(cfg.N8N.URL, log, opts...), nil
}
