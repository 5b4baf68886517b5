package requirements

import (
	"reflect"
	"strings"
	"testing"
)

func TestPlanApprovalTransition(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{
		ApprovedBy:          []string{"alice", "bob"},
		FullyApproved:       true,
		SectionFound:        true,
		StakeholdersDefined: true,
	}

	plan := engine.Plan(verdict, []string{LabelPendingReview, "enhancement"})

	if !reflect.DeepEqual(plan.RemoveLabels, []string{LabelPendingReview}) {
		t.Errorf("RemoveLabels = %v, want [%s]", plan.RemoveLabels, LabelPendingReview)
	}
	if !reflect.DeepEqual(plan.AddLabels, []string{LabelApproved, LabelReadyForDevelopment}) {
		t.Errorf("AddLabels = %v, want [%s %s]", plan.AddLabels, LabelApproved, LabelReadyForDevelopment)
	}
	if !strings.Contains(plan.Comment, "Requirements Approved") {
		t.Errorf("Comment = %q, want approval confirmation", plan.Comment)
	}
	if !strings.Contains(plan.Comment, "@alice") || !strings.Contains(plan.Comment, "@bob") {
		t.Errorf("Comment should list every approver, got %q", plan.Comment)
	}
}

func TestPlanIdempotentAfterTransition(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{
		ApprovedBy:          []string{"alice", "bob"},
		FullyApproved:       true,
		SectionFound:        true,
		StakeholdersDefined: true,
	}

	// Post-transition label set: pending removed, approved labels on.
	plan := engine.Plan(verdict, []string{LabelApproved, LabelReadyForDevelopment})

	if !plan.Empty() {
		t.Errorf("expected empty plan on re-run, got %+v", plan)
	}
}

func TestPlanProgressComment(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{
		ApprovedBy:          []string{"alice"},
		PendingBy:           []string{"bob"},
		SectionFound:        true,
		StakeholdersDefined: true,
	}

	plan := engine.Plan(verdict, []string{LabelPendingReview})

	if len(plan.AddLabels) != 0 || len(plan.RemoveLabels) != 0 {
		t.Errorf("partial approval must not change labels, got %+v", plan)
	}
	if !strings.Contains(plan.Comment, "1 of 2 stakeholders approved") {
		t.Errorf("Comment = %q, want progress summary", plan.Comment)
	}
	if !strings.Contains(plan.Comment, "@bob") {
		t.Errorf("Comment should name pending stakeholders, got %q", plan.Comment)
	}
}

func TestPlanQuietWithZeroApprovals(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{
		PendingBy:           []string{"alice", "bob"},
		SectionFound:        true,
		StakeholdersDefined: true,
	}

	plan := engine.Plan(verdict, []string{LabelPendingReview})

	if !plan.Empty() {
		t.Errorf("expected no actions before the first approval, got %+v", plan)
	}
}

func TestPlanNoStakeholdersWarning(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{} // no section found

	plan := engine.Plan(verdict, []string{LabelPendingReview})

	if len(plan.AddLabels) != 0 || len(plan.RemoveLabels) != 0 {
		t.Errorf("missing stakeholders must not change labels, got %+v", plan)
	}
	if !strings.Contains(plan.Comment, "No Stakeholders Defined") {
		t.Errorf("Comment = %q, want missing-stakeholders warning", plan.Comment)
	}
}

func TestPlanEmptySectionGetsProgressNotWarning(t *testing.T) {
	engine := NewTransitionEngine()
	verdict := Verdict{SectionFound: true} // section present, zero entries

	plan := engine.Plan(verdict, []string{LabelPendingReview})

	if strings.Contains(plan.Comment, "No Stakeholders Defined") {
		t.Errorf("empty section should get the normal pending text, got %q", plan.Comment)
	}
	if !strings.Contains(plan.Comment, "0 of 0 stakeholders approved") {
		t.Errorf("Comment = %q, want pending summary", plan.Comment)
	}
}

func TestPlanCustomLabels(t *testing.T) {
	engine := &TransitionEngine{
		PendingLabel:  "awaiting-signoff",
		ApprovedLabel: "signed-off",
		ReadyLabel:    "ready",
	}
	verdict := Verdict{
		ApprovedBy:          []string{"alice"},
		FullyApproved:       true,
		SectionFound:        true,
		StakeholdersDefined: true,
	}

	plan := engine.Plan(verdict, []string{"awaiting-signoff"})

	if !reflect.DeepEqual(plan.RemoveLabels, []string{"awaiting-signoff"}) {
		t.Errorf("RemoveLabels = %v", plan.RemoveLabels)
	}
	if !reflect.DeepEqual(plan.AddLabels, []string{"signed-off", "ready"}) {
		t.Errorf("AddLabels = %v", plan.AddLabels)
	}
}
