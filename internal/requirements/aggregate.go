package requirements

import (
	"strings"
	"time"

	"github.com/reqsteward/reqsteward/internal/logging"
)

// ReactionThumbsUp is the reaction content GitHub reports for 👍. A
// thumbs-up from a stakeholder counts as an approval on its own.
const ReactionThumbsUp = "+1"

// CommentEvent is one reviewer utterance on the issue.
type CommentEvent struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// ReactionEvent is one emoji reaction on the issue.
type ReactionEvent struct {
	Author  string
	Content string
}

// Verdict is the aggregate approval state computed for one evaluation.
// It is derived fresh on every run; nothing is cached between runs.
// SectionFound and StakeholdersDefined separate the "no Stakeholders
// section at all" case from "section present but no usable entries";
// the transition engine words its status comment differently for each.
type Verdict struct {
	ApprovedBy          []string
	PendingBy           []string
	FullyApproved       bool
	SectionFound        bool
	StakeholdersDefined bool
}

// Aggregate combines the stakeholder list with the observed comments
// and reactions into a Verdict. Comments and reactions from
// non-stakeholders are ignored. An empty stakeholder list is never
// fully approved: no reviewers configured must not silently count as
// approval.
func Aggregate(stakeholders StakeholderList, comments []CommentEvent, reactions []ReactionEvent, matcher *ApprovalMatcher) Verdict {
	if matcher == nil {
		matcher = defaultMatcher
	}

	approved := make(map[string]bool)

	for _, c := range comments {
		if !stakeholders.Contains(c.Author) {
			if matcher.IsApproval(c.Body) {
				logging.Info("Ignoring approval comment from non-stakeholder", "author", c.Author)
			}
			continue
		}
		if matcher.IsApproval(c.Body) {
			logging.Info("Stakeholder approved via comment", "author", c.Author)
			approved[strings.ToLower(c.Author)] = true
		}
	}

	for _, r := range reactions {
		if r.Content != ReactionThumbsUp {
			logging.Debug("Ignoring non-approval reaction", "author", r.Author, "content", r.Content)
			continue
		}
		if !stakeholders.Contains(r.Author) {
			logging.Info("Ignoring thumbs-up from non-stakeholder", "author", r.Author)
			continue
		}
		logging.Info("Stakeholder approved via reaction", "author", r.Author)
		approved[strings.ToLower(r.Author)] = true
	}

	verdict := Verdict{
		SectionFound:        stakeholders.SectionFound,
		StakeholdersDefined: len(stakeholders.Handles) > 0,
	}
	for _, handle := range stakeholders.Handles {
		if approved[strings.ToLower(handle)] {
			verdict.ApprovedBy = append(verdict.ApprovedBy, handle)
		} else {
			verdict.PendingBy = append(verdict.PendingBy, handle)
		}
	}

	verdict.FullyApproved = len(stakeholders.Handles) > 0 && len(verdict.PendingBy) == 0

	logging.Info("Computed approval verdict",
		"approved", len(verdict.ApprovedBy),
		"pending", len(verdict.PendingBy),
		"fully_approved", verdict.FullyApproved)

	return verdict
}
