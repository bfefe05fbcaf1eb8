package seed

import (
	"context"

	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/n8napi"
)

// redisCredential provisions the "Redis Local" credential through the REST
// API so imported workflows can talk to the stack's Redis without manual
// setup. Optional: the API may not accept logins yet (or at all in locked
// down deployments), and a missing credential never blocks the database
// seeding.
type redisCredential struct {
	client   *n8napi.Client
	email    string
	password string
}

var _ engine.Assertion = (*redisCredential)(nil)
var _ engine.OptionalAssertion = (*redisCredential)(nil)

func (a *redisCredential) ID() string          { return "redis-credential" }
func (a *redisCredential) DependsOn() []string { return nil }
func (a *redisCredential) Optional() bool      { return true }

func (a *redisCredential) Check(ctx context.Context) (bool, error) {
	if err := a.ensureSession(ctx); err != nil {
		return false, err
	}

	id, err := a.client.FindCredentialID(ctx, redisCredentialName)
	if err != nil {
		return false, err
	}
	return id != "", nil
}

func (a *redisCredential) Apply(ctx context.Context) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}

	_, err := a.client.CreateCredential(ctx, n8napi.Credential{
		Name: redisCredentialName,
		Type: "redis",
		Data: map[string]any{
			// Hostname and port as seen from inside the compose network.
			"host":     "redis",
			"port":     6379,
			"database": 0,
		},
	})
	return err
}

func (a *redisCredential) ensureSession(ctx context.Context) error {
	if a.client.HasSession() {
		return nil
	}
	return a.client.Login(ctx, a.email, a.password)
}
