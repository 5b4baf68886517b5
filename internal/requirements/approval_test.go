package requirements

import (
	"testing"
)

func TestIsApproval(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"Approved!", true},
		{"approve", true},
		{"LGTM", true},
		{"lgtm, nice work", true},
		{"Looks good to me", true},
		{"yes", true},
		{"Yes, let's do it", true},
		{"ok", true},
		{"good to go", true},
		{"✅ approved", true},
		{"approved ✅", true},
		{"👍 approve", true},
		{"approve 👍", true},
		{"This is approved by the whole team", true},
		{"I don't think so", false},
		{"Can we discuss the second requirement?", false},
		{"Needs more work", false},
		{"yesterday's meeting notes", false},
		{"tokyo office signed off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if got := IsApproval(tt.body); got != tt.want {
				t.Errorf("IsApproval(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestApprovalMatcherExtraPhrases(t *testing.T) {
	m := NewApprovalMatcher("ship it", "sgtm")

	if !m.IsApproval("Ship it!") {
		t.Error("expected extra phrase to match case-insensitively")
	}
	if !m.IsApproval("sgtm") {
		t.Error("expected extra phrase sgtm to match")
	}
	if m.IsApproval("hold off for now") {
		t.Error("did not expect a match")
	}

	// Built-in vocabulary still applies.
	if !m.IsApproval("lgtm") {
		t.Error("expected built-in vocabulary to still match")
	}
}
