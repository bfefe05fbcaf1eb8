// Package seed declares the desired-state assertions that bring a fresh n8n
// deployment to a usable converged state: owner role, admin user, personal
// project, project relation, user settings, and an optional Redis credential
// provisioned through the REST API.
package seed

import (
	"context"
	"strings"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/n8napi"
	"github.com/speesrl/n8nctl/internal/store"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

const (
	ownerRoleSlug       = "global:owner"
	projectOwnerRole    = "project:personalOwner"
	personalProjectType = "personal"
	redisCredentialName = "Redis Local"
)

// Assertions builds the bootstrap assertion set in declaration order. The
// reconciler derives the execution order from the declared dependencies.
func Assertions(cfg *config.Config, q store.Querier, client *n8napi.Client) []engine.Assertion {
	admin := cfg.Admin
	return []engine.Assertion{
		&ownerRole{q: q},
		&adminUser{q: q, admin: admin},
		&personalProject{q: q, admin: admin},
		&projectRelation{q: q, email: admin.Email},
		&userSettings{q: q, email: admin.Email},
		&redisCredential{client: client, email: admin.Email, password: admin.Password},
	}
}

// userID resolves the admin user's id from the store. An absent row is a
// read failure here: every caller runs after the admin-user assertion, so a
// missing row means the lookup itself went wrong.
func userID(ctx context.Context, q store.Querier, email string) (string, error) {
	id, err := q.QueryValue(ctx, `SELECT id FROM "user" WHERE email = `+store.QuoteLiteral(email))
	if err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", n8nerrors.NewReadFailedError("user", "no row for "+email+" after creation", nil)
	}
	return id, nil
}
