package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/store"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// adminUser ensures the admin account row exists with the owner role.
type adminUser struct {
	q     store.Querier
	admin config.AdminConfig
}

var _ engine.Assertion = (*adminUser)(nil)

func (a *adminUser) ID() string          { return "admin-user" }
func (a *adminUser) DependsOn() []string { return []string{"owner-role"} }

func (a *adminUser) Check(ctx context.Context) (bool, error) {
	count, err := store.QueryInt(ctx, a.q,
		`SELECT COUNT(*) FROM "user" WHERE email = `+store.QuoteLiteral(a.admin.Email))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *adminUser) Apply(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return n8nerrors.NewRejectedError("hash password", "", err)
	}

	sql := fmt.Sprintf(`INSERT INTO "user"
		(id, email, "firstName", "lastName", password, "roleSlug", disabled, "mfaEnabled", settings, "createdAt", "updatedAt")
		VALUES (%s, %s, %s, %s, %s, %s, false, false, '{}', now(), now())
		ON CONFLICT (email) DO NOTHING`,
		store.QuoteLiteral(uuid.NewString()),
		store.QuoteLiteral(a.admin.Email),
		store.QuoteLiteral(a.admin.FirstName),
		store.QuoteLiteral(a.admin.LastName),
		store.QuoteLiteral(string(hash)),
		store.QuoteLiteral(ownerRoleSlug),
	)

	_, err = a.q.Exec(ctx, sql)
	return err
}
