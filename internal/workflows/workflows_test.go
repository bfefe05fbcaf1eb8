package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speesrl/n8nctl/internal/n8napi"
)

// workflowServer fakes the subset of the n8n REST surface the importer and
// exporter touch: credential listing and workflow CRUD.
type workflowServer struct {
	credentials []map[string]any
	workflows   []map[string]any
	updated     map[string]map[string]any
	deleted     []string
	nextID      int
}

func newWorkflowServer() *workflowServer {
	return &workflowServer{updated: make(map[string]map[string]any)}
}

func (s *workflowServer) addWorkflow(name string) string {
	s.nextID++
	id := fmt.Sprintf("wf-%d", s.nextID)
	s.workflows = append(s.workflows, map[string]any{"id": id, "name": name, "nodes": []any{}})
	return id
}

func (s *workflowServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /rest/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "n8n-auth", Value: "session"})
		w.Write([]byte(`{"data":{}}`))
	})

	mux.HandleFunc("GET /rest/credentials", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": s.credentials})
	})

	mux.HandleFunc("GET /rest/workflows", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": s.workflows})
	})

	mux.HandleFunc("POST /rest/workflows", func(w http.ResponseWriter, r *http.Request) {
		var workflow map[string]any
		json.NewDecoder(r.Body).Decode(&workflow)
		s.nextID++
		workflow["id"] = fmt.Sprintf("wf-%d", s.nextID)
		s.workflows = append(s.workflows, workflow)
		json.NewEncoder(w).Encode(map[string]any{"data": workflow})
	})

	mux.HandleFunc("PUT /rest/workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		var workflow map[string]any
		json.NewDecoder(r.Body).Decode(&workflow)
		s.updated[r.PathValue("id")] = workflow
		json.NewEncoder(w).Encode(map[string]any{"data": workflow})
	})

	mux.HandleFunc("DELETE /rest/workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.deleted = append(s.deleted, r.PathValue("id"))
		w.Write([]byte(`{"data":true}`))
	})

	return mux
}

func newTestClient(t *testing.T, fake *workflowServer) *n8napi.Client {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := n8napi.NewClient(server.URL, nil)
	require.NoError(t, client.Login(context.Background(), "admin@example.com", "secretpass"))
	return client
}

func writeWorkflowFile(t *testing.T, dir, file string, workflow map[string]any) {
	t.Helper()
	data, err := json.Marshal(workflow)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0o644))
}

func TestImportCreatesNewWorkflows(t *testing.T) {
	fake := newWorkflowServer()
	client := newTestClient(t, fake)

	dir := t.TempDir()
	writeWorkflowFile(t, dir, "alpha.json", map[string]any{"name": "Alpha", "nodes": []any{}})
	writeWorkflowFile(t, dir, "beta.json", map[string]any{"name": "Beta", "nodes": []any{}})

	summary, err := NewImporter(client, nil, dir, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, fake.workflows, 2)
}

func TestImportSkipsExistingWithoutUpdate(t *testing.T) {
	fake := newWorkflowServer()
	fake.addWorkflow("Alpha")
	client := newTestClient(t, fake)

	dir := t.TempDir()
	writeWorkflowFile(t, dir, "alpha.json", map[string]any{"name": "Alpha", "nodes": []any{}})

	summary, err := NewImporter(client, nil, dir, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, fake.updated)
}

func TestImportUpdatesExistingWithUpdateFlag(t *testing.T) {
	fake := newWorkflowServer()
	id := fake.addWorkflow("Alpha")
	client := newTestClient(t, fake)

	dir := t.TempDir()
	writeWorkflowFile(t, dir, "alpha.json", map[string]any{"name": "Alpha", "nodes": []any{}, "note": "v2"})

	summary, err := NewImporter(client, nil, dir, true).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	require.Contains(t, fake.updated, id)
	assert.Equal(t, "v2", fake.updated[id]["note"])
}

func TestImportStripsReadOnlyFields(t *testing.T) {
	fake := newWorkflowServer()
	client := newTestClient(t, fake)

	dir := t.TempDir()
	writeWorkflowFile(t, dir, "alpha.json", map[string]any{
		"name":      "Alpha",
		"nodes":     []any{},
		"id":        "stale-id",
		"active":    true,
		"createdAt": "2024-01-01",
		"updatedAt": "2024-01-02",
		"versionId": "v1",
		"tags":      []any{"x"},
	})

	_, err := NewImporter(client, nil, dir, false).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.workflows, 1)
	created := fake.workflows[0]
	for _, field := range []string{"active", "createdAt", "updatedAt", "versionId", "tags"} {
		assert.NotContains(t, created, field)
	}
	assert.NotEqual(t, "stale-id", created["id"])
}

func TestImportAssignsRedisCredential(t *testing.T) {
	fake := newWorkflowServer()
	fake.credentials = []map[string]any{{"id": "cred-7", "name": "Redis Local", "type": "redis"}}
	client := newTestClient(t, fake)

	dir := t.TempDir()
	writeWorkflowFile(t, dir, "alpha.json", map[string]any{
		"name": "Alpha",
		"nodes": []any{
			map[string]any{"type": "n8n-nodes-base.redis", "name": "Redis"},
			map[string]any{"type": "n8n-nodes-base.set", "name": "Set"},
		},
	})

	_, err := NewImporter(client, nil, dir, false).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.workflows, 1)
	nodes := fake.workflows[0]["nodes"].([]any)

	redisNode := nodes[0].(map[string]any)
	creds := redisNode["credentials"].(map[string]any)
	assigned := creds["redis"].(map[string]any)
	assert.Equal(t, "cred-7", assigned["id"])
	assert.Equal(t, "Redis Local", assigned["name"])

	plainNode := nodes[1].(map[string]any)
	assert.NotContains(t, plainNode, "credentials")
}

func TestImportKeepsExistingNodeCredentials(t *testing.T) {
	workflow := map[string]any{
		"nodes": []any{
			map[string]any{
				"type":        "n8n-nodes-base.redisTrigger",
				"credentials": map[string]any{"redis": map[string]any{"id": "mine"}},
			},
		},
	}

	changed := assignRedisCredential(workflow, "cred-7")

	assert.False(t, changed)
	node := workflow["nodes"].([]any)[0].(map[string]any)
	kept := node["credentials"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "mine", kept["id"])
}

func TestImportCollectsPerFileFailures(t *testing.T) {
	fake := newWorkflowServer()
	client := newTestClient(t, fake)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	writeWorkflowFile(t, dir, "good.json", map[string]any{"name": "Good", "nodes": []any{}})

	summary, err := NewImporter(client, nil, dir, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0], "broken.json")
}

func TestImportMissingDirectoryFails(t *testing.T) {
	fake := newWorkflowServer()
	client := newTestClient(t, fake)

	_, err := NewImporter(client, nil, filepath.Join(t.TempDir(), "absent"), false).Run(context.Background())
	require.Error(t, err)
}

func TestExportWritesOneFilePerWorkflow(t *testing.T) {
	fake := newWorkflowServer()
	fake.addWorkflow("Daily Report")
	fake.addWorkflow("Cleanup")
	client := newTestClient(t, fake)

	dir := t.TempDir()
	written, err := Export(context.Background(), client, nil, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	data, err := os.ReadFile(filepath.Join(dir, "Daily_Report.json"))
	require.NoError(t, err)

	var exported map[string]any
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, "Daily Report", exported["name"])

	assert.FileExists(t, filepath.Join(dir, "Cleanup.json"))
}

func TestDeleteByName(t *testing.T) {
	fake := newWorkflowServer()
	id := fake.addWorkflow("Alpha")
	client := newTestClient(t, fake)

	require.NoError(t, DeleteByName(context.Background(), client, nil, "Alpha"))
	assert.Equal(t, []string{id}, fake.deleted)
}

func TestDeleteByNameUnknownWorkflow(t *testing.T) {
	fake := newWorkflowServer()
	client := newTestClient(t, fake)

	err := DeleteByName(context.Background(), client, nil, "Missing")
	require.ErrorContains(t, err, "not found")
}

func TestFileNameFor(t *testing.T) {
	assert.Equal(t, "Daily_Report.json", fileNameFor("Daily Report"))
	assert.Equal(t, "ab-c_1.2.json", fileNameFor("a/b-c_1.2"))
	assert.Equal(t, "workflow.json", fileNameFor("///"))
}
