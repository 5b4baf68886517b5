// Package vcs defines the platform-neutral interface the approval flow
// needs from a version control host, plus a generic polling monitor.
package vcs

import (
	"time"

	"github.com/reqsteward/reqsteward/internal/models"
)

// Service is the host-side surface consumed by the approval workflow.
// GitHub is the only implementation today; the seam exists so the core
// flow never touches a platform SDK directly.
type Service interface {
	// Issue operations
	GetIssue(owner, repo string, number int) (*models.Issue, error)
	GetIssueWithFeedback(owner, repo string, number int) (*models.Issue, error)
	CreateIssue(owner, repo, title, body string, labels []string) (*models.Issue, error)
	CommentOnIssue(owner, repo string, number int, body string) error

	// Label operations
	AddLabels(owner, repo string, number int, labels []string) error
	RemoveLabel(owner, repo string, number int, label string) error

	// Search
	SearchIssuesByLabel(label string, since time.Time, limit int) ([]*models.Issue, error)

	// Authentication
	GetAuthenticatedUser() (string, error)
}
