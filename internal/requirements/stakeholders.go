package requirements

import (
	"regexp"
	"strings"

	"github.com/reqsteward/reqsteward/internal/logging"
)

// SectionStakeholders is the section heading that declares the
// reviewers of a requirements document.
const SectionStakeholders = "Stakeholders"

// handleRe matches an @-prefixed platform handle.
var handleRe = regexp.MustCompile(`@([A-Za-z0-9_-]+)`)

// bareHandleRe matches a line that is nothing but a handle without the
// @ prefix.
var bareHandleRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// StakeholderList is the ordered, deduplicated set of stakeholder
// handles parsed from one document. SectionFound distinguishes a
// document with no Stakeholders section from one whose section yielded
// no usable entries; the two produce different status comments.
type StakeholderList struct {
	Handles      []string
	SectionFound bool
}

// Contains reports whether the handle is a listed stakeholder.
// Handles compare case-insensitively, matching platform semantics.
func (s StakeholderList) Contains(handle string) bool {
	for _, h := range s.Handles {
		if strings.EqualFold(h, handle) {
			return true
		}
	}
	return false
}

// ParseStakeholders extracts the stakeholder list from a requirements
// document. It is best-effort text extraction over user-authored
// markdown: malformed input yields an empty list, never an error.
func ParseStakeholders(document string) StakeholderList {
	body, found := ExtractSection(document, SectionStakeholders)
	if !found {
		logging.Debug("No stakeholders section found in document")
		return StakeholderList{}
	}

	list := StakeholderList{SectionFound: true}
	seen := make(map[string]bool)

	add := func(handle string) {
		key := strings.ToLower(handle)
		if handle == "" || seen[key] {
			return
		}
		seen[key] = true
		list.Handles = append(list.Handles, handle)
	}

	for _, line := range strings.Split(body, "\n") {
		entry := strings.TrimSpace(line)
		entry = strings.TrimPrefix(entry, "- ")
		entry = strings.TrimPrefix(entry, "* ")
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if matches := handleRe.FindAllStringSubmatch(entry, -1); matches != nil {
			for _, m := range matches {
				add(m[1])
			}
			continue
		}

		// A line without an @ but otherwise shaped like a handle is
		// accepted as a bare identifier.
		if bareHandleRe.MatchString(entry) {
			add(entry)
		}
	}

	logging.Debug("Parsed stakeholders from document", "count", len(list.Handles))
	return list
}
