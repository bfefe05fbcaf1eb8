package seed

import (
	"context"
	"fmt"

	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/store"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// activatedSettings is what the UI writes once the first-run survey is
// completed; seeding it skips the onboarding screens entirely.
const activatedSettings = `{"userActivated": true, "firstSuccessfulWorkflowId": null, "userActivatedAt": null}`

// userSettings ensures the admin account is marked activated so the instance
// does not greet automation with the onboarding flow.
type userSettings struct {
	q     store.Querier
	email string
}

var _ engine.Assertion = (*userSettings)(nil)

func (a *userSettings) ID() string          { return "user-settings" }
func (a *userSettings) DependsOn() []string { return []string{"admin-user"} }

func (a *userSettings) Check(ctx context.Context) (bool, error) {
	sql := fmt.Sprintf(`SELECT COALESCE(settings->>'userActivated', 'f') FROM "user" WHERE email = %s`,
		store.QuoteLiteral(a.email))

	row, err := a.q.QueryRow(ctx, sql)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, n8nerrors.NewReadFailedError("user", "no row for "+a.email, nil)
	}

	switch row[0] {
	case "true", "t":
		return true, nil
	default:
		return false, nil
	}
}

func (a *userSettings) Apply(ctx context.Context) error {
	// Guarded update: only rows whose settings actually differ are touched,
	// so re-application after a crash is a no-op.
	sql := fmt.Sprintf(`UPDATE "user"
		SET settings = %s, "updatedAt" = now()
		WHERE email = %s AND COALESCE(settings->>'userActivated', 'f') IS DISTINCT FROM 'true'`,
		store.QuoteLiteral(activatedSettings),
		store.QuoteLiteral(a.email),
	)

	_, err := a.q.Exec(ctx, sql)
	return err
}
