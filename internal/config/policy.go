package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the on-disk approval policy: the label vocabulary and any
// extra approval phrases, kept in one reviewable YAML file so teams can
// tune the approval rules without touching credentials.
type Policy struct {
	Labels struct {
		Pending  string `yaml:"pending"`
		Approved string `yaml:"approved"`
		Ready    string `yaml:"ready"`
	} `yaml:"labels"`
	ApprovalPhrases []string `yaml:"approval_phrases"`
}

// LoadPolicy reads and parses a policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return &policy, nil
}

// Apply overlays the policy's non-empty settings onto the config.
func (p *Policy) Apply(cfg *Config) {
	if p.Labels.Pending != "" {
		cfg.Labels.Pending = p.Labels.Pending
	}
	if p.Labels.Approved != "" {
		cfg.Labels.Approved = p.Labels.Approved
	}
	if p.Labels.Ready != "" {
		cfg.Labels.Ready = p.Labels.Ready
	}
	if len(p.ApprovalPhrases) > 0 {
		cfg.Approval.ExtraPhrases = append(cfg.Approval.ExtraPhrases, p.ApprovalPhrases...)
	}
}
