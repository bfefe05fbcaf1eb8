package seed

import (
	"context"

	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/store"
)

// ownerRole ensures the global owner role row exists. Recent n8n releases
// seed it during migration, but older data directories can miss it.
type ownerRole struct {
	q store.Querier
}

var _ engine.Assertion = (*ownerRole)(nil)

func (a *ownerRole) ID() string          { return "owner-role" }
func (a *ownerRole) DependsOn() []string { return nil }

func (a *ownerRole) Check(ctx context.Context) (bool, error) {
	count, err := store.QueryInt(ctx, a.q,
		`SELECT COUNT(*) FROM "role" WHERE slug = `+store.QuoteLiteral(ownerRoleSlug))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *ownerRole) Apply(ctx context.Context) error {
	_, err := a.q.Exec(ctx,
		`INSERT INTO "role" (slug) VALUES (`+store.QuoteLiteral(ownerRoleSlug)+`) ON CONFLICT DO NOTHING`)
	return err
}
