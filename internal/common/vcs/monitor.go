package vcs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
)

// IssueProcessor defines a function that processes a single issue
type IssueProcessor interface {
	Process(*models.Issue) error
}

// Monitor polls the host for open issues awaiting stakeholder review
// and hands each one to the processor.
type Monitor struct {
	service      Service
	config       *config.Config
	lastChecked  time.Time
	username     string
	processedIDs map[string]time.Time
	mutex        sync.Mutex
	processor    IssueProcessor
	repoFilter   []string
}

// MonitorConfig holds configuration for creating a monitor
type MonitorConfig struct {
	Config    *config.Config
	Service   Service
	Processor IssueProcessor
}

// NewMonitor creates a new monitor with the given configuration
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("config is required for monitor")
	}

	if cfg.Service == nil {
		return nil, fmt.Errorf("service is required for monitor")
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("processor is required for monitor")
	}

	username, err := cfg.Service.GetAuthenticatedUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}

	repoFilter := cfg.Config.Monitor.RepoFilter
	logging.Info("Creating new monitor",
		"username", username,
		"pending_label", cfg.Config.Labels.Pending,
		"repo_filter_count", len(repoFilter))

	return &Monitor{
		service:      cfg.Service,
		config:       cfg.Config,
		lastChecked:  time.Now().Add(-24 * time.Hour), // Start by checking the last 24 hours
		username:     username,
		processedIDs: make(map[string]time.Time),
		processor:    cfg.Processor,
		repoFilter:   repoFilter,
	}, nil
}

// Start begins the continuous monitoring process
func (m *Monitor) Start() error {
	logging.Info("Starting approval monitor", "pending_label", m.config.Labels.Pending)

	if len(m.repoFilter) > 0 {
		logging.Info("Monitoring specific repositories", "repos", strings.Join(m.repoFilter, ", "))
	} else {
		logging.Info("Monitoring all accessible repositories")
	}

	// Loop indefinitely, checking for issues awaiting review
	for {
		if err := m.checkPendingIssues(); err != nil {
			logging.Error("Failed to check pending issues", "error", err)
		}

		m.lastChecked = time.Now()

		pollIntervalSeconds := m.config.Monitor.PollInterval * 60
		logging.Info("Waiting before next check", "seconds", pollIntervalSeconds)
		time.Sleep(time.Duration(pollIntervalSeconds) * time.Second)
	}
}

// CheckOnce runs a single check for issues awaiting review
func (m *Monitor) CheckOnce() error {
	logging.Info("Running one-time check for issues awaiting review",
		"pending_label", m.config.Labels.Pending)

	if err := m.checkPendingIssues(); err != nil {
		logging.Error("Check failed", "error", err)
		return err
	}

	logging.Info("One-time check completed successfully")
	return nil
}

// checkPendingIssues finds open issues carrying the pending label and
// runs the approval check for each one.
func (m *Monitor) checkPendingIssues() error {
	issues, err := m.service.SearchIssuesByLabel(m.config.Labels.Pending, m.lastChecked, 100)
	if err != nil {
		return fmt.Errorf("error searching for pending issues: %w", err)
	}

	logging.Info("Found issues awaiting review", "count", len(issues))

	var matchingRepoIssues int

	for _, issue := range issues {
		// Apply repository filter if configured
		if len(m.repoFilter) > 0 {
			repoName := issue.Owner + "/" + issue.Repo
			repoFound := false

			for _, allowedRepo := range m.repoFilter {
				if strings.EqualFold(allowedRepo, repoName) {
					repoFound = true
					break
				}
			}

			if !repoFound {
				logging.Debug("Issue does not match repository filter, skipping",
					"repo", repoName,
					"issue", issue.Number)
				continue
			}
		}

		matchingRepoIssues++

		// Skip issues processed within the last hour
		m.mutex.Lock()
		issueID := fmt.Sprintf("%s/%s#%d", issue.Owner, issue.Repo, issue.Number)
		lastProcessed, exists := m.processedIDs[issueID]
		m.mutex.Unlock()

		if exists {
			timeSince := time.Since(lastProcessed)
			if timeSince < time.Hour {
				logging.Debug("Skipping recently processed issue",
					"issue", issueID,
					"processed_ago", timeSince.Round(time.Second))
				continue
			}
		}

		if err := m.processor.Process(issue); err != nil {
			logging.Error("Failed to process issue", "issue", issueID, "error", err)
			continue
		}

		m.mutex.Lock()
		m.processedIDs[issueID] = time.Now()
		m.mutex.Unlock()
	}

	// Cleanup old processed IDs to prevent memory leaks
	m.cleanupProcessedIDs()

	logging.Info(fmt.Sprintf("Pending issues summary: %d total, %d matching repo filter",
		len(issues), matchingRepoIssues))

	return nil
}

// cleanupProcessedIDs removes entries older than 24 hours to prevent memory leaks
func (m *Monitor) cleanupProcessedIDs() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cutoff := time.Now().Add(-24 * time.Hour)
	for id, timestamp := range m.processedIDs {
		if timestamp.Before(cutoff) {
			delete(m.processedIDs, id)
		}
	}
}

// GetStats returns monitoring statistics
func (m *Monitor) GetStats() map[string]interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return map[string]interface{}{
		"last_checked":     m.lastChecked,
		"issues_processed": len(m.processedIDs),
		"username":         m.username,
		"pending_label":    m.config.Labels.Pending,
		"poll_interval":    m.config.Monitor.PollInterval,
		"repo_filters":     m.repoFilter,
	}
}

// GetUsername returns the username being used for monitoring
func (m *Monitor) GetUsername() string {
	return m.username
}
