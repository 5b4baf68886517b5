// Package requirements implements the approval core: parsing
// requirements documents, matching approval intent in comments,
// aggregating stakeholder approvals, and planning label transitions.
package requirements

import (
	"regexp"
	"strings"
)

// ExtractSection slices the body of a named markdown section out of a
// requirements document. The header is recognized either as a
// "## <name>" heading (case-insensitive, with optional emoji or other
// decoration between the hashes and the name) or as a bare "<name>:"
// label line. The body runs from the line after the header up to the
// next "##" heading or the end of the document.
//
// The second return value reports whether the header was found at all,
// so callers can distinguish a missing section from an empty one.
func ExtractSection(document, header string) (string, bool) {
	headingRe, labelRe := headerPatterns(header)

	lines := strings.Split(document, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !headingRe.MatchString(trimmed) && !labelRe.MatchString(trimmed) {
			continue
		}

		var body []string
		for _, next := range lines[i+1:] {
			if strings.HasPrefix(strings.TrimSpace(next), "##") {
				break
			}
			body = append(body, next)
		}
		return strings.TrimSpace(strings.Join(body, "\n")), true
	}

	return "", false
}

// headerPatterns builds the two accepted header forms for a section
// name: a "##" heading with optional decoration, and a bare label line.
func headerPatterns(name string) (heading, label *regexp.Regexp) {
	quoted := regexp.QuoteMeta(name)
	heading = regexp.MustCompile(`(?i)^##[^#\p{L}\p{N}]*` + quoted + `\s*$`)
	label = regexp.MustCompile(`(?i)^` + quoted + `:\s*$`)
	return heading, label
}

// SectionItems splits a section body into its bullet-list items,
// stripping list markers and checkbox syntax. Non-list lines are kept
// as items too, so plain-line sections still yield one item per line.
func SectionItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		item := strings.TrimSpace(line)
		item = strings.TrimPrefix(item, "- ")
		item = strings.TrimPrefix(item, "* ")
		item = strings.TrimPrefix(item, "[ ] ")
		item = strings.TrimPrefix(item, "[x] ")
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
