// Package workflow orchestrates approval evaluation and status
// transitions for requirement issues.
package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/reqsteward/reqsteward/internal/common/vcs"
	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
	"github.com/reqsteward/reqsteward/internal/requirements"
)

// CheckResult captures one approval evaluation run
type CheckResult struct {
	RunID    string                      `json:"run_id"`
	Owner    string                      `json:"owner"`
	Repo     string                      `json:"repo"`
	Number   int                         `json:"number"`
	Verdict  requirements.Verdict        `json:"verdict"`
	Plan     requirements.TransitionPlan `json:"plan"`
	Executed bool                        `json:"executed"`
}

// ApprovalWorkflow evaluates stakeholder approval on requirement
// issues and applies the resulting status transition.
type ApprovalWorkflow struct {
	config  *config.Config
	service vcs.Service
	matcher *requirements.ApprovalMatcher
	engine  *requirements.TransitionEngine
	DryRun  bool
}

// NewApprovalWorkflow creates an approval workflow backed by the
// given issue service.
func NewApprovalWorkflow(cfg *config.Config, service vcs.Service) *ApprovalWorkflow {
	engine := requirements.NewTransitionEngine()
	if cfg != nil {
		if cfg.Labels.Pending != "" {
			engine.PendingLabel = cfg.Labels.Pending
		}
		if cfg.Labels.Approved != "" {
			engine.ApprovedLabel = cfg.Labels.Approved
		}
		if cfg.Labels.Ready != "" {
			engine.ReadyLabel = cfg.Labels.Ready
		}
	}

	var extra []string
	if cfg != nil {
		extra = cfg.Approval.ExtraPhrases
	}

	return &ApprovalWorkflow{
		config:  cfg,
		service: service,
		matcher: requirements.NewApprovalMatcher(extra...),
		engine:  engine,
	}
}

// CheckIssue evaluates one issue and applies any pending transition.
// The evaluation itself is pure; only the plan execution touches the
// issue, so repeated runs on an unchanged issue do nothing.
func (w *ApprovalWorkflow) CheckIssue(owner, repo string, number int) (*CheckResult, error) {
	result := &CheckResult{
		RunID:  uuid.NewString(),
		Owner:  owner,
		Repo:   repo,
		Number: number,
	}

	logging.Info("Checking requirement issue",
		"run_id", result.RunID,
		"owner", owner,
		"repo", repo,
		"number", number)

	issue, err := w.service.GetIssueWithFeedback(owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue for approval check: %w", err)
	}

	result.Verdict = w.evaluate(issue)
	result.Plan = w.engine.Plan(result.Verdict, issue.Labels)

	if result.Plan.Empty() {
		logging.Info("No transition needed", "run_id", result.RunID, "number", number)
		return result, nil
	}

	if w.DryRun {
		logging.Info("Dry run, skipping transition",
			"run_id", result.RunID,
			"add_labels", result.Plan.AddLabels,
			"remove_labels", result.Plan.RemoveLabels)
		return result, nil
	}

	if err := w.execute(issue, result.Plan); err != nil {
		return result, err
	}
	result.Executed = true

	logging.Info("Transition applied",
		"run_id", result.RunID,
		"number", number,
		"fully_approved", result.Verdict.FullyApproved)

	return result, nil
}

func (w *ApprovalWorkflow) evaluate(issue *models.Issue) requirements.Verdict {
	stakeholders := requirements.ParseStakeholders(issue.Body)

	comments := make([]requirements.CommentEvent, 0, len(issue.Comments))
	for _, c := range issue.Comments {
		comments = append(comments, requirements.CommentEvent{
			Author:    c.User,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}

	reactions := make([]requirements.ReactionEvent, 0, len(issue.Reactions))
	for _, r := range issue.Reactions {
		reactions = append(reactions, requirements.ReactionEvent{
			Author:  r.User,
			Content: r.Content,
		})
	}

	return requirements.Aggregate(stakeholders, comments, reactions, w.matcher)
}

func (w *ApprovalWorkflow) execute(issue *models.Issue, plan requirements.TransitionPlan) error {
	for _, label := range plan.RemoveLabels {
		if err := w.service.RemoveLabel(issue.Owner, issue.Repo, issue.Number, label); err != nil {
			return fmt.Errorf("failed to apply transition: %w", err)
		}
	}

	if len(plan.AddLabels) > 0 {
		if err := w.service.AddLabels(issue.Owner, issue.Repo, issue.Number, plan.AddLabels); err != nil {
			return fmt.Errorf("failed to apply transition: %w", err)
		}
	}

	if plan.Comment != "" {
		if err := w.service.CommentOnIssue(issue.Owner, issue.Repo, issue.Number, plan.Comment); err != nil {
			return fmt.Errorf("failed to post status comment: %w", err)
		}
	}

	return nil
}

// Process implements vcs.IssueProcessor so the workflow can sit
// behind the polling monitor.
func (w *ApprovalWorkflow) Process(issue *models.Issue) error {
	_, err := w.CheckIssue(issue.Owner, issue.Repo, issue.Number)
	return err
}
