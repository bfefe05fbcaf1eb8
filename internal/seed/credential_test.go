package seed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speesrl/n8nctl/internal/n8napi"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

type credentialServer struct {
	rejectLogin bool
	credentials []map[string]any
	created     []map[string]any
}

func (s *credentialServer) start(t *testing.T) *n8napi.Client {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /rest/login", func(w http.ResponseWriter, r *http.Request) {
		if s.rejectLogin {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{}}`))
	})

	mux.HandleFunc("GET /rest/credentials", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": s.credentials})
	})

	mux.HandleFunc("POST /rest/credentials", func(w http.ResponseWriter, r *http.Request) {
		var cred map[string]any
		json.NewDecoder(r.Body).Decode(&cred)
		cred["id"] = "cred-1"
		s.created = append(s.created, cred)
		json.NewEncoder(w).Encode(map[string]any{"data": cred})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return n8napi.NewClient(server.URL, nil)
}

func TestRedisCredentialCheckFindsExisting(t *testing.T) {
	server := &credentialServer{credentials: []map[string]any{{"id": "cred-9", "name": "Redis Local", "type": "redis"}}}
	assertion := &redisCredential{client: server.start(t), email: "a@x.com", password: "pw"}

	satisfied, err := assertion.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestRedisCredentialApplyCreates(t *testing.T) {
	server := &credentialServer{}
	assertion := &redisCredential{client: server.start(t), email: "a@x.com", password: "pw"}

	satisfied, err := assertion.Check(context.Background())
	require.NoError(t, err)
	require.False(t, satisfied)

	require.NoError(t, assertion.Apply(context.Background()))
	require.Len(t, server.created, 1)
	assert.Equal(t, "Redis Local", server.created[0]["name"])
	assert.Equal(t, "redis", server.created[0]["type"])
}

func TestRedisCredentialLoginRejectionSurfaces(t *testing.T) {
	server := &credentialServer{rejectLogin: true}
	assertion := &redisCredential{client: server.start(t), email: "a@x.com", password: "pw"}

	_, err := assertion.Check(context.Background())
	require.Error(t, err)
	assert.True(t, n8nerrors.IsRejected(err))
}
