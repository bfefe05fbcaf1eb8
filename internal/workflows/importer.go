// Package workflows moves workflow definitions between a directory of JSON
// files and the n8n instance.
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/speesrl/n8nctl/internal/logger"
	"github.com/speesrl/n8nctl/internal/n8napi"
)

// readOnlyFields are managed by the server and rejected on import.
var readOnlyFields = []string{"active", "id", "createdAt", "updatedAt", "versionId", "tags"}

var redisNodeTypes = map[string]struct{}{
	"n8n-nodes-base.redis":        {},
	"n8n-nodes-base.redisTrigger": {},
}

const redisCredentialName = "Redis Local"

// Importer imports every JSON workflow file from a directory, skipping or
// updating workflows that already exist on the server (matched by name).
type Importer struct {
	client *n8napi.Client
	log    *logger.Logger
	dir    string
	update bool
}

// NewImporter constructs an Importer. With update=false existing workflows
// are skipped; with update=true they are replaced.
func NewImporter(client *n8napi.Client, log *logger.Logger, dir string, update bool) *Importer {
	return &Importer{client: client, log: log.WithComponent("workflows"), dir: dir, update: update}
}

// Summary aggregates the per-file import outcomes.
type Summary struct {
	Imported int
	Updated  int
	Skipped  int
	Failed   int
	Failures []string
}

// Run performs the import. An error return means the run could not start at
// all (directory unreadable, server listing failed); per-file failures are
// collected in the summary instead.
func (i *Importer) Run(ctx context.Context) (*Summary, error) {
	existing, err := i.existingByName(ctx)
	if err != nil {
		return nil, err
	}

	files, err := i.workflowFiles()
	if err != nil {
		return nil, err
	}

	// Best effort: without the credential, Redis nodes are imported
	// unconfigured and flagged for manual setup.
	redisCredID, err := i.client.FindCredentialID(ctx, redisCredentialName)
	if err != nil {
		i.log.Error(err, "could not look up Redis credential, importing without it")
		redisCredID = ""
	}

	summary := &Summary{}
	for _, file := range files {
		if err := i.importFile(ctx, file, existing, redisCredID, summary); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", filepath.Base(file), err))
			i.log.WithFields(map[string]any{"file": filepath.Base(file)}).Error(err, "import failed")
		}
	}

	return summary, nil
}

func (i *Importer) importFile(ctx context.Context, path string, existing map[string]string, redisCredID string, summary *Summary) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var workflow map[string]any
	if err := json.Unmarshal(data, &workflow); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	name := workflowName(workflow)
	stripReadOnlyFields(workflow)
	if redisCredID != "" && assignRedisCredential(workflow, redisCredID) {
		i.log.WithFields(map[string]any{"workflow": name}).Debug("assigned Redis credential to Redis nodes")
	}

	if id, exists := existing[name]; exists {
		if !i.update {
			summary.Skipped++
			i.log.WithFields(map[string]any{"workflow": name}).Warn("already exists, skipping (use --update to overwrite)")
			return nil
		}
		if err := i.client.UpdateWorkflow(ctx, id, workflow); err != nil {
			return err
		}
		summary.Updated++
		i.log.WithFields(map[string]any{"workflow": name, "id": id}).Info("workflow updated")
		return nil
	}

	created, err := i.client.CreateWorkflow(ctx, workflow)
	if err != nil {
		return err
	}
	summary.Imported++
	i.log.WithFields(map[string]any{"workflow": name, "id": created["id"]}).Info("workflow imported")
	return nil
}

func (i *Importer) existingByName(ctx context.Context) (map[string]string, error) {
	listed, err := i.client.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]string, len(listed))
	for _, workflow := range listed {
		name := workflowName(workflow)
		id, _ := workflow["id"].(string)
		if name != "" && id != "" {
			existing[name] = id
		}
	}
	return existing, nil
}

func (i *Importer) workflowFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(i.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(i.dir); statErr != nil {
		return nil, statErr
	}
	sort.Strings(files)
	return files, nil
}

func workflowName(workflow map[string]any) string {
	name, _ := workflow["name"].(string)
	return name
}

func stripReadOnlyFields(workflow map[string]any) {
	for _, field := range readOnlyFields {
		delete(workflow, field)
	}
}

// assignRedisCredential attaches the shared Redis credential to every Redis
// node that has none yet. Reports whether anything changed.
func assignRedisCredential(workflow map[string]any, credentialID string) bool {
	nodes, _ := workflow["nodes"].([]any)
	changed := false

	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		nodeType, _ := node["type"].(string)
		if _, isRedis := redisNodeTypes[nodeType]; !isRedis {
			continue
		}

		credentials, _ := node["credentials"].(map[string]any)
		if credentials == nil {
			credentials = make(map[string]any)
			node["credentials"] = credentials
		}
		if _, set := credentials["redis"]; set {
			continue
		}

		credentials["redis"] = map[string]any{
			"id":   credentialID,
			"name": redisCredentialName,
		}
		changed = true
	}

	return changed
}
