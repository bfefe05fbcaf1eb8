package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/speesrl/n8nctl/internal/logger"
	"github.com/speesrl/n8nctl/internal/n8napi"
)

// Export writes every workflow on the server to <dir>/<name>.json and
// returns the number of files written.
func Export(ctx context.Context, client *n8napi.Client, log *logger.Logger, dir string) (int, error) {
	log = log.WithComponent("workflows")

	listed, err := client.ListWorkflows(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, workflow := range listed {
		name := workflowName(workflow)
		if name == "" {
			id, _ := workflow["id"].(string)
			name = "workflow-" + id
		}

		data, err := json.MarshalIndent(workflow, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encoding workflow %q: %w", name, err)
		}

		path := filepath.Join(dir, fileNameFor(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, err
		}
		written++
		log.WithFields(map[string]any{"workflow": name, "file": filepath.Base(path)}).Info("workflow exported")
	}

	return written, nil
}

// DeleteByName removes the workflow with the given name from the server.
func DeleteByName(ctx context.Context, client *n8napi.Client, log *logger.Logger, name string) error {
	listed, err := client.ListWorkflows(ctx)
	if err != nil {
		return err
	}

	for _, workflow := range listed {
		if workflowName(workflow) != name {
			continue
		}
		id, _ := workflow["id"].(string)
		if err := client.DeleteWorkflow(ctx, id); err != nil {
			return err
		}
		log.WithComponent("workflows").WithFields(map[string]any{"workflow": name, "id": id}).Info("workflow deleted")
		return nil
	}

	return fmt.Errorf("workflow %q not found", name)
}

// fileNameFor maps a workflow name to a safe file name.
func fileNameFor(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if mapped == "" {
		mapped = "workflow"
	}
	return mapped + ".json"
}
