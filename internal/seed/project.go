package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/store"
)

// personalProject ensures the admin's personal project row exists.
type personalProject struct {
	q     store.Querier
	admin config.AdminConfig
}

var _ engine.Assertion = (*personalProject)(nil)

func (a *personalProject) ID() string          { return "personal-project" }
func (a *personalProject) DependsOn() []string { return []string{"admin-user"} }

func (a *personalProject) Check(ctx context.Context) (bool, error) {
	count, err := store.QueryInt(ctx, a.q,
		`SELECT COUNT(*) FROM project WHERE type = `+store.QuoteLiteral(personalProjectType))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *personalProject) Apply(ctx context.Context) error {
	creatorID, err := userID(ctx, a.q, a.admin.Email)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s %s <%s>", a.admin.FirstName, a.admin.LastName, a.admin.Email)
	sql := fmt.Sprintf(`INSERT INTO project (id, name, type, "creatorId", "createdAt", "updatedAt")
		VALUES (%s, %s, %s, %s, now(), now())
		ON CONFLICT DO NOTHING`,
		store.QuoteLiteral(uuid.NewString()),
		store.QuoteLiteral(name),
		store.QuoteLiteral(personalProjectType),
		store.QuoteLiteral(creatorID),
	)

	_, err = a.q.Exec(ctx, sql)
	return err
}
