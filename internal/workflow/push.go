package workflow

import (
	"fmt"
	"os"
	"strings"

	"github.com/reqsteward/reqsteward/internal/common/vcs"
	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
	"github.com/reqsteward/reqsteward/internal/requirements"
)

// PushResult describes the issue created for a requirements document
type PushResult struct {
	Issue        *models.Issue `json:"issue"`
	Stakeholders []string      `json:"stakeholders"`
	Notified     bool          `json:"notified"`
}

// PushWorkflow publishes a local requirements document as a GitHub
// issue awaiting stakeholder review.
type PushWorkflow struct {
	config  *config.Config
	service vcs.Service
}

// NewPushWorkflow creates a push workflow backed by the given issue
// service.
func NewPushWorkflow(cfg *config.Config, service vcs.Service) *PushWorkflow {
	return &PushWorkflow{
		config:  cfg,
		service: service,
	}
}

// PushFile reads a requirements document from disk and opens it as an
// issue carrying the pending label. When the document names
// stakeholders they are @mentioned in a review request comment;
// otherwise the issue gets the missing-stakeholders warning so the
// gap is visible from the start.
func (w *PushWorkflow) PushFile(path, owner, repo, title string) (*PushResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}
	body := string(data)

	if title == "" {
		title = titleFromDocument(body, path)
	}

	return w.Push(owner, repo, title, body)
}

// Push opens a requirements document as a pending-review issue
func (w *PushWorkflow) Push(owner, repo, title, body string) (*PushResult, error) {
	pendingLabel := requirements.LabelPendingReview
	if w.config != nil && w.config.Labels.Pending != "" {
		pendingLabel = w.config.Labels.Pending
	}

	issue, err := w.service.CreateIssue(owner, repo, title, body, []string{pendingLabel})
	if err != nil {
		return nil, fmt.Errorf("failed to push requirements: %w", err)
	}

	result := &PushResult{Issue: issue}

	stakeholders := requirements.ParseStakeholders(body)
	result.Stakeholders = stakeholders.Handles

	var comment string
	if len(stakeholders.Handles) > 0 {
		comment = reviewRequestComment(stakeholders.Handles)
	} else {
		logging.Warn("Requirements document names no stakeholders",
			"owner", owner, "repo", repo, "number", issue.Number)
		comment = missingStakeholdersComment()
	}

	if err := w.service.CommentOnIssue(owner, repo, issue.Number, comment); err != nil {
		// The issue exists; a failed notification should not undo it
		logging.Error("Failed to post review request comment", "error", err)
		return result, nil
	}
	result.Notified = true

	return result, nil
}

// titleFromDocument uses the first markdown H1 as the issue title and
// falls back to the file name.
func titleFromDocument(body, path string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}

	name := path
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".md")
	return "Requirements: " + name
}

func reviewRequestComment(handles []string) string {
	var b strings.Builder
	b.WriteString("## 👀 Review Requested\n\n")
	b.WriteString("The following stakeholders are asked to review and approve these requirements:\n\n")
	for _, handle := range handles {
		fmt.Fprintf(&b, "- @%s\n", handle)
	}
	b.WriteString("\nReply with `approved` (or react with 👍 on the issue) to record your approval.\n")
	return b.String()
}

func missingStakeholdersComment() string {
	return "## ⚠️ No Stakeholders Defined\n\n" +
		"This requirements document has no Stakeholders section, so approval cannot be tracked.\n" +
		"Add a `## Stakeholders` section listing the GitHub handles who must sign off.\n"
}
