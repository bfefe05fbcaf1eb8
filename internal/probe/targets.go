package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/speesrl/n8nctl/internal/store"
)

// HTTP probes a liveness endpoint; ready when it answers 200.
func HTTP(client *http.Client, url string) Func {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}
}

// Redis probes a Redis server with PING.
func Redis(client *redis.Client) Func {
	return func(ctx context.Context) bool {
		return client.Ping(ctx).Err() == nil
	}
}

// Postgres probes the relational store with a trivial query.
func Postgres(q store.Querier) Func {
	return func(ctx context.Context) bool {
		value, err := q.QueryValue(ctx, "SELECT 1")
		return err == nil && strings.TrimSpace(value) == "1"
	}
}

// Tables reports ready once every named table resolves via to_regclass,
// i.e. the application's migrations have finished.
func Tables(q store.Querier, tables ...string) Func {
	return func(ctx context.Context) bool {
		for _, table := range tables {
			sql := fmt.Sprintf("SELECT to_regclass(%s) IS NOT NULL", store.QuoteLiteral(fmt.Sprintf("public.%s", table)))
			present, err := store.QueryBool(ctx, q, sql)
			if err != nil || !present {
				return false
			}
		}
		return true
	}
}
