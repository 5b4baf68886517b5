// Package config loads and persists the reqsteward configuration.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	GitHub struct {
		Token string
		User  string
	}
	Anthropic struct {
		Token string
	}
	Planner struct {
		Enabled      bool
		TenantID     string
		ClientID     string
		ClientSecret string
		PlanID       string
		BucketID     string
	}
	Approval struct {
		PolicyFile   string   // optional YAML policy file overriding labels/phrases
		ExtraPhrases []string // additional approval phrases
	}
	Labels struct {
		Pending  string
		Approved string
		Ready    string
	}
	Monitor struct {
		PollInterval int      // in minutes
		RepoFilter   []string // optional list of repositories to filter on (empty means all)
	}
	Logging struct {
		Output     io.Writer `json:"-"`
		Level      string
		JSONFormat bool
	}
}

// applyDefaults fills in the values that must never be empty.
func applyDefaults(cfg *Config) {
	if cfg.Labels.Pending == "" {
		cfg.Labels.Pending = "pending-review"
	}
	if cfg.Labels.Approved == "" {
		cfg.Labels.Approved = "approved"
	}
	if cfg.Labels.Ready == "" {
		cfg.Labels.Ready = "ready-for-development"
	}
	if cfg.Monitor.PollInterval == 0 {
		cfg.Monitor.PollInterval = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".reqsteward", "config.json")
}

// Exists checks if configuration file exists
func Exists() bool {
	_, err := os.Stat(GetConfigPath())
	return err == nil
}

// encodeCredentials encodes sensitive credentials using base64
func encodeCredentials(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

// decodeCredentials decodes base64 encoded credentials
func decodeCredentials(value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("failed to decode credential: %w", err)
	}
	return string(decoded), nil
}

// Load loads configuration from the config file, applies environment
// variable overrides and the approval policy file, and validates the
// result.
func Load() (*Config, error) {
	config := &Config{}
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration not found. Please run 'reqsteward config' first")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Decode credentials
	if config.GitHub.Token != "" {
		decodedToken, err := decodeCredentials(config.GitHub.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to decode GitHub token: %w", err)
		}
		config.GitHub.Token = decodedToken
	}

	if config.Anthropic.Token != "" {
		decodedToken, err := decodeCredentials(config.Anthropic.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to decode Anthropic token: %w", err)
		}
		config.Anthropic.Token = decodedToken
	}

	if config.Planner.ClientSecret != "" {
		decodedSecret, err := decodeCredentials(config.Planner.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to decode Planner client secret: %w", err)
		}
		config.Planner.ClientSecret = decodedSecret
	}

	// Check environment variables as override
	if envToken := os.Getenv("GITHUB_TOKEN"); envToken != "" {
		config.GitHub.Token = envToken
	}
	if envToken := os.Getenv("ANTHROPIC_API_KEY"); envToken != "" {
		config.Anthropic.Token = envToken
	}
	if envSecret := os.Getenv("MSGRAPH_CLIENT_SECRET"); envSecret != "" {
		config.Planner.ClientSecret = envSecret
	}

	applyDefaults(config)

	// An on-disk policy file wins over the JSON label/phrase settings.
	if config.Approval.PolicyFile != "" {
		policy, err := LoadPolicy(config.Approval.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load approval policy: %w", err)
		}
		policy.Apply(config)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig checks if the required configuration is present
func validateConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("github token is required")
	}

	if config.Labels.Pending == "" || config.Labels.Approved == "" || config.Labels.Ready == "" {
		return fmt.Errorf("label names must not be empty")
	}

	if config.Planner.Enabled {
		if config.Planner.TenantID == "" || config.Planner.ClientID == "" || config.Planner.ClientSecret == "" {
			return fmt.Errorf("planner integration requires tenant id, client id and client secret")
		}
		if config.Planner.PlanID == "" {
			return fmt.Errorf("planner integration requires a plan id")
		}
	}

	return nil
}

// Configurator helps build and save configuration
type Configurator struct {
	config Config
}

// NewConfigurator creates a new configurator
func NewConfigurator() *Configurator {
	return &Configurator{
		config: Config{},
	}
}

// SetGitHubToken sets the GitHub token
func (c *Configurator) SetGitHubToken(token string) {
	c.config.GitHub.Token = token
}

// SetGitHubUser sets the GitHub user
func (c *Configurator) SetGitHubUser(user string) {
	c.config.GitHub.User = user
}

// SetAnthropicToken sets the Anthropic token
func (c *Configurator) SetAnthropicToken(token string) {
	c.config.Anthropic.Token = token
}

// SetPlanner sets the Microsoft Planner integration settings
func (c *Configurator) SetPlanner(tenantID, clientID, clientSecret, planID, bucketID string) {
	c.config.Planner.Enabled = tenantID != "" && clientID != ""
	c.config.Planner.TenantID = tenantID
	c.config.Planner.ClientID = clientID
	c.config.Planner.ClientSecret = clientSecret
	c.config.Planner.PlanID = planID
	c.config.Planner.BucketID = bucketID
}

// SetLabels sets the lifecycle label names
func (c *Configurator) SetLabels(pending, approved, ready string) {
	c.config.Labels.Pending = pending
	c.config.Labels.Approved = approved
	c.config.Labels.Ready = ready
}

// SetMonitoringSettings sets the issue monitoring settings
func (c *Configurator) SetMonitoringSettings(interval int, repoFilter []string) {
	c.config.Monitor.PollInterval = interval
	c.config.Monitor.RepoFilter = repoFilter
}

// Save saves the configuration to the user's home directory
func (c *Configurator) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".reqsteward")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configToSave := c.config
	applyDefaults(&configToSave)

	// Base64 encode sensitive credentials
	if configToSave.GitHub.Token != "" {
		configToSave.GitHub.Token = encodeCredentials(configToSave.GitHub.Token)
	}
	if configToSave.Anthropic.Token != "" {
		configToSave.Anthropic.Token = encodeCredentials(configToSave.Anthropic.Token)
	}
	if configToSave.Planner.ClientSecret != "" {
		configToSave.Planner.ClientSecret = encodeCredentials(configToSave.Planner.ClientSecret)
	}

	configJSON, err := json.MarshalIndent(configToSave, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, configJSON, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
