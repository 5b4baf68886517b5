package requirements

import (
	"fmt"
	"strings"

	"github.com/reqsteward/reqsteward/internal/logging"
)

// Issue lifecycle labels. pending-review transitions to approved plus
// ready-for-development once every stakeholder has approved; approved
// is terminal.
const (
	LabelPendingReview       = "pending-review"
	LabelApproved            = "approved"
	LabelReadyForDevelopment = "ready-for-development"
)

// TransitionPlan is the diff of label edits plus an optional status
// comment for the GitHub layer to execute. The engine never mutates
// issue state itself.
type TransitionPlan struct {
	AddLabels    []string
	RemoveLabels []string
	Comment      string
}

// Empty reports whether the plan carries no actions at all.
func (p TransitionPlan) Empty() bool {
	return len(p.AddLabels) == 0 && len(p.RemoveLabels) == 0 && p.Comment == ""
}

// TransitionEngine computes label transitions for approval verdicts.
// Label names default to the standard vocabulary but can be overridden
// by the policy file.
type TransitionEngine struct {
	PendingLabel  string
	ApprovedLabel string
	ReadyLabel    string
}

// NewTransitionEngine creates an engine with the default label names.
func NewTransitionEngine() *TransitionEngine {
	return &TransitionEngine{
		PendingLabel:  LabelPendingReview,
		ApprovedLabel: LabelApproved,
		ReadyLabel:    LabelReadyForDevelopment,
	}
}

// Plan computes the label and comment actions for a verdict given the
// issue's current label set. Re-running with the post-transition label
// set yields an empty plan, so re-triggered checks never duplicate
// label edits or confirmation comments.
func (e *TransitionEngine) Plan(verdict Verdict, currentLabels []string) TransitionPlan {
	has := func(name string) bool {
		for _, l := range currentLabels {
			if l == name {
				return true
			}
		}
		return false
	}

	if verdict.FullyApproved {
		if !has(e.PendingLabel) {
			// Already transitioned (or never entered review): no-op.
			logging.Debug("Issue fully approved with no pending label, nothing to do")
			return TransitionPlan{}
		}

		plan := TransitionPlan{
			RemoveLabels: []string{e.PendingLabel},
			Comment:      e.approvalComment(verdict),
		}
		for _, label := range []string{e.ApprovedLabel, e.ReadyLabel} {
			if !has(label) {
				plan.AddLabels = append(plan.AddLabels, label)
			}
		}
		logging.Info("Planned approval transition",
			"add", strings.Join(plan.AddLabels, ","),
			"remove", strings.Join(plan.RemoveLabels, ","))
		return plan
	}

	if !verdict.SectionFound {
		return TransitionPlan{Comment: noStakeholdersComment()}
	}

	if len(verdict.ApprovedBy) > 0 || !verdict.StakeholdersDefined {
		return TransitionPlan{Comment: e.progressComment(verdict)}
	}

	// Zero approvals so far: stay quiet rather than spam the issue on
	// every check.
	return TransitionPlan{}
}

// approvalComment builds the confirmation posted when the document
// reaches full approval.
func (e *TransitionEngine) approvalComment(verdict Verdict) string {
	var b strings.Builder
	b.WriteString("## ✅ Requirements Approved\n\n")
	b.WriteString(fmt.Sprintf("All %d stakeholders have approved this requirements document:\n\n", len(verdict.ApprovedBy)))
	for _, handle := range verdict.ApprovedBy {
		b.WriteString(fmt.Sprintf("- @%s ✅\n", handle))
	}
	b.WriteString(fmt.Sprintf("\nThe issue has been labeled `%s` and `%s`.\n", e.ApprovedLabel, e.ReadyLabel))
	return b.String()
}

// progressComment builds the interim status update while approvals are
// still outstanding.
func (e *TransitionEngine) progressComment(verdict Verdict) string {
	total := len(verdict.ApprovedBy) + len(verdict.PendingBy)

	var b strings.Builder
	b.WriteString("## ⏳ Approval Status\n\n")
	b.WriteString(fmt.Sprintf("%d of %d stakeholders approved.\n", len(verdict.ApprovedBy), total))

	if len(verdict.ApprovedBy) > 0 {
		b.WriteString("\n**Approved:**\n")
		for _, handle := range verdict.ApprovedBy {
			b.WriteString(fmt.Sprintf("- @%s ✅\n", handle))
		}
	}
	if len(verdict.PendingBy) > 0 {
		b.WriteString("\n**Waiting on:**\n")
		for _, handle := range verdict.PendingBy {
			b.WriteString(fmt.Sprintf("- @%s\n", handle))
		}
	}
	return b.String()
}

// noStakeholdersComment is posted when the document has no
// Stakeholders section at all, which blocks approval entirely.
func noStakeholdersComment() string {
	return "## ⚠️ No Stakeholders Defined\n\n" +
		"This requirements document has no Stakeholders section, so approval cannot proceed.\n" +
		"Add a `## 👥 Stakeholders` section listing the reviewers as @mentions.\n"
}
