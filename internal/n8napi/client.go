package n8napi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/speesrl/n8nctl/internal/logger"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client talks to the n8n instance over its REST surface. Two auth modes are
// supported, mirroring what the server accepts: a cookie session obtained via
// Login, or an API key sent as the X-N8N-API-KEY header. With a session the
// client uses the /rest endpoints; with only an API key, workflow operations
// go through /api/v1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	loggedIn   bool
	log        *logger.Logger
}

// Option customises client construction.
type Option func(*Client)

// WithAPIKey enables API-key authentication as a fallback to session login.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithHTTPClient overrides the underlying HTTP client (used by tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
		log:        log.WithComponent("n8napi"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient.Jar == nil {
		client.httpClient.Jar = jar
	}
	return client
}

// HasSession reports whether a login succeeded on this client.
func (c *Client) HasSession() bool { return c.loggedIn }

// HasAPIKey reports whether an API key was configured.
func (c *Client) HasAPIKey() bool { return c.apiKey != "" }

// Login authenticates with email and password, storing the session cookie on
// the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload := map[string]string{
		"emailOrLdapLoginId": email,
		"password":           password,
	}
	if _, err := c.do(ctx, http.MethodPost, "/rest/login", payload); err != nil {
		return err
	}
	c.loggedIn = true
	c.log.WithFields(map[string]any{"email": email}).Debug("session established")
	return nil
}

// Healthz checks the liveness endpoint.
func (c *Client) Healthz(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// Credential is an n8n credential resource.
type Credential struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// ListCredentials returns all credentials visible to the session.
func (c *Client) ListCredentials(ctx context.Context) ([]Credential, error) {
	raw, err := c.do(ctx, http.MethodGet, "/rest/credentials", nil)
	if err != nil {
		return nil, err
	}

	var credentials []Credential
	if err := json.Unmarshal(unwrapData(raw), &credentials); err != nil {
		return nil, n8nerrors.NewReadFailedError("credentials", "undecodable response", err)
	}
	return credentials, nil
}

// FindCredentialID returns the id of the credential with the given name, or
// an empty string when no such credential exists.
func (c *Client) FindCredentialID(ctx context.Context, name string) (string, error) {
	credentials, err := c.ListCredentials(ctx)
	if err != nil {
		return "", err
	}
	for _, cred := range credentials {
		if cred.Name == name {
			return cred.ID, nil
		}
	}
	return "", nil
}

// CreateCredential creates a credential and returns its id.
func (c *Client) CreateCredential(ctx context.Context, credential Credential) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/rest/credentials", credential)
	if err != nil {
		return "", err
	}

	var created Credential
	if err := json.Unmarshal(unwrapData(raw), &created); err != nil {
		return "", n8nerrors.NewReadFailedError("credentials", "undecodable response", err)
	}
	return created.ID, nil
}

// ListWorkflows returns the raw workflow resources on the server.
func (c *Client) ListWorkflows(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, c.workflowsPath(""), nil)
	if err != nil {
		return nil, err
	}

	var workflows []map[string]any
	if err := json.Unmarshal(unwrapData(raw), &workflows); err != nil {
		return nil, n8nerrors.NewReadFailedError("workflows", "undecodable response", err)
	}
	return workflows, nil
}

// CreateWorkflow imports a workflow definition and returns the created
// resource.
func (c *Client) CreateWorkflow(ctx context.Context, workflow map[string]any) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodPost, c.workflowsPath(""), workflow)
	if err != nil {
		return nil, err
	}

	var created map[string]any
	if err := json.Unmarshal(unwrapData(raw), &created); err != nil {
		return nil, n8nerrors.NewReadFailedError("workflows", "undecodable response", err)
	}
	return created, nil
}

// UpdateWorkflow replaces an existing workflow definition.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, workflow map[string]any) error {
	_, err := c.do(ctx, http.MethodPut, c.workflowsPath(id), workflow)
	return err
}

// DeleteWorkflow removes a workflow by id.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.workflowsPath(id), nil)
	return err
}

func (c *Client) workflowsPath(id string) string {
	base := "/rest/workflows"
	if c.apiKey != "" && !c.loggedIn {
		base = "/api/v1/workflows"
	}
	if id == "" {
		return base
	}
	return base + "/" + id
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" && !c.loggedIn {
		req.Header.Set("X-N8N-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, n8nerrors.NewUnreachableError("n8n", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, n8nerrors.NewUnreachableError("n8n", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(payload))
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		op := fmt.Sprintf("%s %s", method, path)
		return nil, n8nerrors.NewRejectedError(op, fmt.Sprintf("status %d: %s", resp.StatusCode, detail), nil)
	}

	return json.RawMessage(payload), nil
}

// unwrapData strips the {"data": ...} envelope some endpoints wrap their
// payload in; responses without the envelope pass through unchanged.
func unwrapData(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}
