package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/store"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// projectRelation ensures the row linking the admin user to the personal
// project exists. Depends on both ends of the link; ids are re-read from the
// store at apply time rather than carried over from earlier assertions.
type projectRelation struct {
	q     store.Querier
	email string
}

var _ engine.Assertion = (*projectRelation)(nil)

func (a *projectRelation) ID() string { return "project-relation" }

func (a *projectRelation) DependsOn() []string {
	return []string{"admin-user", "personal-project"}
}

func (a *projectRelation) Check(ctx context.Context) (bool, error) {
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM project_relation pr
		JOIN "user" u ON pr."userId" = u.id
		WHERE u.email = %s AND pr.role = %s`,
		store.QuoteLiteral(a.email),
		store.QuoteLiteral(projectOwnerRole),
	)
	count, err := store.QueryInt(ctx, a.q, sql)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *projectRelation) Apply(ctx context.Context) error {
	uid, err := userID(ctx, a.q, a.email)
	if err != nil {
		return err
	}

	pid, err := a.q.QueryValue(ctx,
		`SELECT id FROM project WHERE type = `+store.QuoteLiteral(personalProjectType)+` LIMIT 1`)
	if err != nil {
		return err
	}
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return n8nerrors.NewReadFailedError("project", "no personal project row after creation", nil)
	}

	sql := fmt.Sprintf(`INSERT INTO project_relation ("projectId", "userId", role, "createdAt", "updatedAt")
		VALUES (%s, %s, %s, now(), now())
		ON CONFLICT DO NOTHING`,
		store.QuoteLiteral(pid),
		store.QuoteLiteral(uid),
		store.QuoteLiteral(projectOwnerRole),
	)

	_, err = a.q.Exec(ctx, sql)
	return err
}
