package n8napi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// fakeN8N is a minimal stand-in for the n8n REST surface: session login with
// a cookie, credential listing/creation, workflow CRUD with the data
// envelope.
type fakeN8N struct {
	t           *testing.T
	email       string
	password    string
	apiKey      string
	credentials []Credential
	workflows   []map[string]any
	nextID      int
}

func (f *fakeN8N) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /rest/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if body["emailOrLdapLoginId"] != f.email || body["password"] != f.password {
			http.Error(w, `{"message":"Wrong username or password"}`, http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "n8n-auth", Value: "session-token"})
		w.Write([]byte(`{"data":{"id":"user-1"}}`))
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /rest/credentials", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": f.credentials})
	})

	mux.HandleFunc("POST /rest/credentials", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var cred Credential
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&cred))
		f.nextID++
		cred.ID = fmt.Sprintf("cred-%d", f.nextID)
		f.credentials = append(f.credentials, cred)
		json.NewEncoder(w).Encode(map[string]any{"data": cred})
	})

	mux.HandleFunc("GET /rest/workflows", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": f.workflows})
	})

	mux.HandleFunc("GET /api/v1/workflows", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-N8N-API-KEY") != f.apiKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": f.workflows})
	})

	mux.HandleFunc("POST /rest/workflows", func(w http.ResponseWriter, r *http.Request) {
		var wf map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&wf))
		f.nextID++
		wf["id"] = fmt.Sprintf("wf-%d", f.nextID)
		f.workflows = append(f.workflows, wf)
		json.NewEncoder(w).Encode(map[string]any{"data": wf})
	})

	return mux
}

func (f *fakeN8N) authorized(r *http.Request) bool {
	if cookie, err := r.Cookie("n8n-auth"); err == nil && cookie.Value == "session-token" {
		return true
	}
	return f.apiKey != "" && r.Header.Get("X-N8N-API-KEY") == f.apiKey
}

func newTestClient(t *testing.T, fake *fakeN8N, opts ...Option) *Client {
	t.Helper()
	fake.t = t
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, nil, opts...)
}

func TestLoginEstablishesSession(t *testing.T) {
	client := newTestClient(t, &fakeN8N{email: "a@x.com", password: "secret"})

	require.NoError(t, client.Login(context.Background(), "a@x.com", "secret"))
	assert.True(t, client.HasSession())

	// Session cookie authorizes subsequent requests.
	_, err := client.ListCredentials(context.Background())
	require.NoError(t, err)
}

func TestLoginRejectionIsRejectedError(t *testing.T) {
	client := newTestClient(t, &fakeN8N{email: "a@x.com", password: "secret"})

	err := client.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, n8nerrors.IsRejected(err))
	assert.False(t, client.HasSession())
}

func TestUnreachableServerIsUnreachableError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)

	err := client.Healthz(context.Background())
	require.Error(t, err)
	assert.True(t, n8nerrors.IsUnreachable(err))
}

func TestCreateCredentialReturnsID(t *testing.T) {
	client := newTestClient(t, &fakeN8N{email: "a@x.com", password: "secret"})
	require.NoError(t, client.Login(context.Background(), "a@x.com", "secret"))

	id, err := client.CreateCredential(context.Background(), Credential{
		Name: "Redis Local",
		Type: "redis",
		Data: map[string]any{"host": "redis", "port": 6379},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	found, err := client.FindCredentialID(context.Background(), "Redis Local")
	require.NoError(t, err)
	assert.Equal(t, id, found)
}

func TestFindCredentialIDMissingIsEmptyNotError(t *testing.T) {
	client := newTestClient(t, &fakeN8N{email: "a@x.com", password: "secret"})
	require.NoError(t, client.Login(context.Background(), "a@x.com", "secret"))

	id, err := client.FindCredentialID(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestWorkflowsUseAPIEndpointWithKeyOnly(t *testing.T) {
	fake := &fakeN8N{apiKey: "key-123", workflows: []map[string]any{{"id": "wf-1", "name": "ping"}}}
	client := newTestClient(t, fake, WithAPIKey("key-123"))

	workflows, err := client.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "ping", workflows[0]["name"])
}

func TestCreateWorkflowRoundTrip(t *testing.T) {
	client := newTestClient(t, &fakeN8N{email: "a@x.com", password: "secret"})
	require.NoError(t, client.Login(context.Background(), "a@x.com", "secret"))

	created, err := client.CreateWorkflow(context.Background(), map[string]any{"name": "cache warmup"})
	require.NoError(t, err)
	assert.NotEmpty(t, created["id"])
}

func TestUnwrapDataPassesBarePayloadsThrough(t *testing.T) {
	bare := json.RawMessage(`[{"id":"1"}]`)
	assert.Equal(t, bare, unwrapData(bare))

	wrapped := json.RawMessage(`{"data":[{"id":"1"}]}`)
	assert.JSONEq(t, `[{"id":"1"}]`, string(unwrapData(wrapped)))
}
