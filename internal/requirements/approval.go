package requirements

import (
	"regexp"
	"strings"
)

// approvalPatterns is the ordered vocabulary of approval intent. Each
// entry maps free text to "this comment approves the document"; the
// first match wins. The vocabulary is permissive: bare "yes" and "ok"
// count, so non-technical stakeholders can approve in plain language.
var approvalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`✅\s*approved`),
	regexp.MustCompile(`approved\s*✅`),
	regexp.MustCompile(`👍\s*approve`),
	regexp.MustCompile(`approve\s*👍`),
	regexp.MustCompile(`looks good to me`),
	regexp.MustCompile(`good to go`),
	regexp.MustCompile(`\blgtm\b`),
	regexp.MustCompile(`\bapproved?\b`),
	regexp.MustCompile(`\byes\b`),
	regexp.MustCompile(`\bok\b`),
}

// ApprovalMatcher tests comment bodies for approval intent. The zero
// vocabulary is the built-in pattern table; extra phrases from the
// policy file are matched as case-insensitive substrings.
type ApprovalMatcher struct {
	patterns []*regexp.Regexp
}

// NewApprovalMatcher builds a matcher from the built-in vocabulary plus
// any extra phrases.
func NewApprovalMatcher(extraPhrases ...string) *ApprovalMatcher {
	patterns := make([]*regexp.Regexp, len(approvalPatterns), len(approvalPatterns)+len(extraPhrases))
	copy(patterns, approvalPatterns)

	for _, phrase := range extraPhrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(regexp.QuoteMeta(phrase)))
	}

	return &ApprovalMatcher{patterns: patterns}
}

// IsApproval reports whether the comment body expresses approval. The
// body is lower-cased and tested against the vocabulary in order; any
// single match is sufficient.
func (m *ApprovalMatcher) IsApproval(body string) bool {
	text := strings.ToLower(body)
	for _, p := range m.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

var defaultMatcher = NewApprovalMatcher()

// IsApproval tests a comment body against the built-in vocabulary.
func IsApproval(body string) bool {
	return defaultMatcher.IsApproval(body)
}
