package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.GitHub.Token = "github-token"
		cfg.GitHub.User = "user"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			mutate:    func(*Config) {},
			expectErr: false,
		},
		{
			name:      "missing github token",
			mutate:    func(c *Config) { c.GitHub.Token = "" },
			expectErr: true,
		},
		{
			name:      "empty label name",
			mutate:    func(c *Config) { c.Labels.Pending = "" },
			expectErr: true,
		},
		{
			name:      "planner enabled without credentials",
			mutate:    func(c *Config) { c.Planner.Enabled = true },
			expectErr: true,
		},
		{
			name: "planner enabled with credentials",
			mutate: func(c *Config) {
				c.Planner.Enabled = true
				c.Planner.TenantID = "tenant"
				c.Planner.ClientID = "client"
				c.Planner.ClientSecret = "secret"
				c.Planner.PlanID = "plan"
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if (err != nil) != tt.expectErr {
				t.Errorf("validateConfig() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Labels.Pending != "pending-review" {
		t.Errorf("Pending label = %q, want pending-review", cfg.Labels.Pending)
	}
	if cfg.Labels.Approved != "approved" {
		t.Errorf("Approved label = %q, want approved", cfg.Labels.Approved)
	}
	if cfg.Labels.Ready != "ready-for-development" {
		t.Errorf("Ready label = %q, want ready-for-development", cfg.Labels.Ready)
	}
	if cfg.Monitor.PollInterval != 5 {
		t.Errorf("PollInterval = %d, want 5", cfg.Monitor.PollInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestConfigurator(t *testing.T) {
	configurator := NewConfigurator()

	configurator.SetGitHubToken("test-github-token")
	configurator.SetGitHubUser("test-user")
	configurator.SetAnthropicToken("test-anthropic-token")
	configurator.SetLabels("awaiting-signoff", "signed-off", "ready")
	configurator.SetMonitoringSettings(10, []string{"org/repo1", "org/repo2"})
	configurator.SetPlanner("tenant", "client", "secret", "plan", "bucket")

	if configurator.config.GitHub.Token != "test-github-token" {
		t.Errorf("GitHub token not set correctly, got %s", configurator.config.GitHub.Token)
	}
	if configurator.config.GitHub.User != "test-user" {
		t.Errorf("GitHub user not set correctly, got %s", configurator.config.GitHub.User)
	}
	if configurator.config.Anthropic.Token != "test-anthropic-token" {
		t.Errorf("Anthropic token not set correctly, got %s", configurator.config.Anthropic.Token)
	}
	if configurator.config.Labels.Pending != "awaiting-signoff" {
		t.Errorf("Pending label not set correctly, got %s", configurator.config.Labels.Pending)
	}
	if configurator.config.Monitor.PollInterval != 10 {
		t.Errorf("Poll interval not set correctly, got %d", configurator.config.Monitor.PollInterval)
	}
	if len(configurator.config.Monitor.RepoFilter) != 2 {
		t.Errorf("Repo filter not set correctly, got %v", configurator.config.Monitor.RepoFilter)
	}
	if !configurator.config.Planner.Enabled {
		t.Error("Planner should be enabled when tenant and client id are set")
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `labels:
  pending: awaiting-signoff
  approved: signed-off
approval_phrases:
  - ship it
  - sgtm
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}

	cfg := &Config{}
	applyDefaults(cfg)
	policy.Apply(cfg)

	if cfg.Labels.Pending != "awaiting-signoff" {
		t.Errorf("Pending label = %q, want awaiting-signoff", cfg.Labels.Pending)
	}
	if cfg.Labels.Approved != "signed-off" {
		t.Errorf("Approved label = %q, want signed-off", cfg.Labels.Approved)
	}
	// Ready label was not set in the policy and keeps the default.
	if cfg.Labels.Ready != "ready-for-development" {
		t.Errorf("Ready label = %q, want ready-for-development", cfg.Labels.Ready)
	}
	if len(cfg.Approval.ExtraPhrases) != 2 {
		t.Errorf("ExtraPhrases = %v, want two entries", cfg.Approval.ExtraPhrases)
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing policy file")
	}
}
