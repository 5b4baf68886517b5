// Package models defines the plain data records exchanged between the
// GitHub layer and the approval core.
package models

import (
	"time"
)

// Issue represents a GitHub issue carrying a requirements document
type Issue struct {
	Owner     string
	Repo      string
	Number    int
	Title     string
	Body      string
	User      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
	URL       string
	Comments  []*IssueComment
	Reactions []*Reaction
	Labels    []string
}

// IssueComment represents a comment on a GitHub issue
type IssueComment struct {
	ID        int64
	User      string
	Body      string
	CreatedAt time.Time
}

// Reaction represents an emoji reaction on a GitHub issue
type Reaction struct {
	ID      int64
	User    string
	Content string
}

// HasLabel reports whether the issue currently carries the given label.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}
