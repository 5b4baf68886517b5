package vcs

import (
	"testing"
	"time"

	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/models"
)

// stubService returns a fixed issue list from SearchIssuesByLabel
type stubService struct {
	issues []*models.Issue
}

func (s *stubService) GetIssue(owner, repo string, number int) (*models.Issue, error) {
	return nil, nil
}

func (s *stubService) GetIssueWithFeedback(owner, repo string, number int) (*models.Issue, error) {
	return nil, nil
}

func (s *stubService) CreateIssue(owner, repo, title, body string, labels []string) (*models.Issue, error) {
	return nil, nil
}

func (s *stubService) CommentOnIssue(owner, repo string, number int, body string) error {
	return nil
}

func (s *stubService) AddLabels(owner, repo string, number int, labels []string) error {
	return nil
}

func (s *stubService) RemoveLabel(owner, repo string, number int, label string) error {
	return nil
}

func (s *stubService) SearchIssuesByLabel(label string, since time.Time, limit int) ([]*models.Issue, error) {
	return s.issues, nil
}

func (s *stubService) GetAuthenticatedUser() (string, error) {
	return "reqsteward-bot", nil
}

// countingProcessor records which issues it was handed
type countingProcessor struct {
	processed []string
}

func (p *countingProcessor) Process(issue *models.Issue) error {
	p.processed = append(p.processed, issue.Owner+"/"+issue.Repo)
	return nil
}

func monitorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Labels.Pending = "pending-review"
	cfg.Monitor.PollInterval = 5
	return cfg
}

func TestNewMonitorValidation(t *testing.T) {
	service := &stubService{}
	processor := &countingProcessor{}
	cfg := monitorConfig()

	tests := []struct {
		name    string
		mc      MonitorConfig
		wantErr bool
	}{
		{name: "complete", mc: MonitorConfig{Config: cfg, Service: service, Processor: processor}},
		{name: "missing config", mc: MonitorConfig{Service: service, Processor: processor}, wantErr: true},
		{name: "missing service", mc: MonitorConfig{Config: cfg, Processor: processor}, wantErr: true},
		{name: "missing processor", mc: MonitorConfig{Config: cfg, Service: service}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonitor(tt.mc)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMonitor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckOnceRepoFilter(t *testing.T) {
	service := &stubService{
		issues: []*models.Issue{
			{Owner: "testowner", Repo: "wanted", Number: 1, Labels: []string{"pending-review"}},
			{Owner: "testowner", Repo: "other", Number: 2, Labels: []string{"pending-review"}},
		},
	}
	processor := &countingProcessor{}

	cfg := monitorConfig()
	cfg.Monitor.RepoFilter = []string{"testowner/wanted"}

	monitor, err := NewMonitor(MonitorConfig{Config: cfg, Service: service, Processor: processor})
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}

	if err := monitor.CheckOnce(); err != nil {
		t.Fatalf("CheckOnce returned error: %v", err)
	}

	if len(processor.processed) != 1 || processor.processed[0] != "testowner/wanted" {
		t.Errorf("Expected only the filtered repo to be processed, got %v", processor.processed)
	}
}

func TestCheckOnceSkipsRecentlyProcessed(t *testing.T) {
	service := &stubService{
		issues: []*models.Issue{
			{Owner: "testowner", Repo: "testrepo", Number: 1, Labels: []string{"pending-review"}},
		},
	}
	processor := &countingProcessor{}

	monitor, err := NewMonitor(MonitorConfig{Config: monitorConfig(), Service: service, Processor: processor})
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}

	if err := monitor.CheckOnce(); err != nil {
		t.Fatalf("First CheckOnce returned error: %v", err)
	}
	if err := monitor.CheckOnce(); err != nil {
		t.Fatalf("Second CheckOnce returned error: %v", err)
	}

	// The second pass must skip the issue processed moments ago
	if len(processor.processed) != 1 {
		t.Errorf("Expected 1 processed issue across both passes, got %d", len(processor.processed))
	}

	stats := monitor.GetStats()
	if stats["issues_processed"] != 1 {
		t.Errorf("Expected 1 tracked issue, got %v", stats["issues_processed"])
	}
	if monitor.GetUsername() != "reqsteward-bot" {
		t.Errorf("Unexpected username: %s", monitor.GetUsername())
	}
}
