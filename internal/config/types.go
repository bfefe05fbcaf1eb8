package config

import (
	"time"
)

// Config is the full n8nctl configuration document.
type Config struct {
	Admin     AdminConfig     `yaml:"admin" validate:"required"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	N8N       N8NConfig       `yaml:"n8n"`
	Workflows WorkflowsConfig `yaml:"workflows"`
	Probe     ProbeConfig     `yaml:"probe"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
}

// AdminConfig identifies the admin account the bootstrap converges on.
type AdminConfig struct {
	Email     string `yaml:"email" validate:"required,email"`
	Password  string `yaml:"password" validate:"required,min=8"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// DatabaseConfig locates the Postgres instance. With a DSN the store
// connects directly; otherwise queries run through the container runtime.
type DatabaseConfig struct {
	Container string `yaml:"container" validate:"required_without=DSN,omitempty,container_name"`
	Name      string `yaml:"name"`
	User      string `yaml:"user"`
	DSN       string `yaml:"dsn"`
}

// RedisConfig locates the Redis instance.
type RedisConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// N8NConfig locates the n8n REST surface.
type N8NConfig struct {
	URL        string `yaml:"url" validate:"required,http_url"`
	APIKeyFile string `yaml:"api_key_file"`
}

// WorkflowsConfig points at the directory of workflow JSON files.
type WorkflowsConfig struct {
	Dir string `yaml:"dir"`
}

// ProbeConfig bounds the readiness polls.
type ProbeConfig struct {
	MaxAttempts     int `yaml:"max_attempts" validate:"min=1,max=600"`
	IntervalSeconds int `yaml:"interval_seconds" validate:"min=1,max=300"`
}

// Interval returns the poll interval as a duration.
func (p ProbeConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// RuntimeConfig selects the container runtime binary.
type RuntimeConfig struct {
	Binary string `yaml:"binary" validate:"omitempty,oneof=docker podman"`
}

// applyDefaults fills the optional fields callers usually omit.
func applyDefaults(cfg *Config) {
	if cfg.Admin.FirstName == "" {
		cfg.Admin.FirstName = "Admin"
	}
	if cfg.Admin.LastName == "" {
		cfg.Admin.LastName = "User"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "n8n"
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "n8n"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.N8N.URL == "" {
		cfg.N8N.URL = "http://localhost:5678"
	}
	if cfg.Probe.MaxAttempts == 0 {
		cfg.Probe.MaxAttempts = 30
	}
	if cfg.Probe.IntervalSeconds == 0 {
		cfg.Probe.IntervalSeconds = 2
	}
	if cfg.Runtime.Binary == "" {
		cfg.Runtime.Binary = "docker"
	}
}
