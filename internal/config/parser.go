package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a configuration file from disk, applies environment
// overrides and defaults, validates the result, and returns the model.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, n8nerrors.NewParseError(path, 0, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, n8nerrors.NewParseError(path, extractLine(err), err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets deployment secrets stay out of the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("N8N_ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("N8N_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("N8N_URL"); v != "" {
		cfg.N8N.URL = v
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
