// Package github implements the vcs.Service interface on the GitHub
// REST API.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"

	"github.com/reqsteward/reqsteward/internal/common/vcs"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
)

// Client handles GitHub API interactions
type Client struct {
	client *github.Client
}

var _ vcs.Service = (*Client)(nil)

// NewClient creates a new GitHub client
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// GetAuthenticatedUser returns the login of the token's user
func (c *Client) GetAuthenticatedUser() (string, error) {
	user, _, err := c.client.Users.Get(context.Background(), "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// GetIssue gets a single issue including its current labels
func (c *Client) GetIssue(owner, repo string, number int) (*models.Issue, error) {
	issue, _, err := c.client.Issues.Get(context.Background(), owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return convertIssue(owner, repo, issue), nil
}

// GetIssueWithFeedback gets an issue together with all of its comments
// and reactions, which is everything an approval evaluation needs.
func (c *Client) GetIssueWithFeedback(owner, repo string, number int) (*models.Issue, error) {
	result, err := c.GetIssue(owner, repo, number)
	if err != nil {
		return nil, err
	}

	comments, err := c.getIssueComments(owner, repo, number)
	if err != nil {
		return nil, err
	}
	result.Comments = comments

	reactions, err := c.getIssueReactions(owner, repo, number)
	if err != nil {
		return nil, err
	}
	result.Reactions = reactions

	return result, nil
}

// getIssueComments gets all comments for an issue in creation order
func (c *Client) getIssueComments(owner, repo string, number int) ([]*models.IssueComment, error) {
	var allComments []*models.IssueComment
	opts := &github.IssueListCommentsOptions{
		Sort:      github.String("created"),
		Direction: github.String("asc"),
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		comments, resp, err := c.client.Issues.ListComments(context.Background(), owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}

		for _, comment := range comments {
			allComments = append(allComments, &models.IssueComment{
				ID:        comment.GetID(),
				User:      comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt(),
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// getIssueReactions gets all reactions on the issue body
func (c *Client) getIssueReactions(owner, repo string, number int) ([]*models.Reaction, error) {
	var allReactions []*models.Reaction
	opts := &github.ListOptions{PerPage: 100}

	for {
		reactions, resp, err := c.client.Reactions.ListIssueReactions(context.Background(), owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reactions: %w", err)
		}

		for _, reaction := range reactions {
			allReactions = append(allReactions, &models.Reaction{
				ID:      reaction.GetID(),
				User:    reaction.GetUser().GetLogin(),
				Content: reaction.GetContent(),
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return allReactions, nil
}

// CreateIssue creates a new issue with the given labels
func (c *Client) CreateIssue(owner, repo, title, body string, labels []string) (*models.Issue, error) {
	request := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		request.Labels = &labels
	}

	issue, _, err := c.client.Issues.Create(context.Background(), owner, repo, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	logging.Info("Created issue",
		"owner", owner,
		"repo", repo,
		"number", issue.GetNumber(),
		"url", issue.GetHTMLURL())

	return convertIssue(owner, repo, issue), nil
}

// CommentOnIssue posts a comment on a GitHub issue
func (c *Client) CommentOnIssue(owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(
		context.Background(),
		owner,
		repo,
		number,
		&github.IssueComment{
			Body: github.String(body),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to create issue comment: %w", err)
	}

	return nil
}

// AddLabels adds labels to an issue
func (c *Client) AddLabels(owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	_, _, err := c.client.Issues.AddLabelsToIssue(context.Background(), owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}

	return nil
}

// RemoveLabel removes a single label from an issue. A label that is
// already absent is not an error; the transition must stay idempotent
// even if a previous run was interrupted mid-way.
func (c *Client) RemoveLabel(owner, repo string, number int, label string) error {
	resp, err := c.client.Issues.RemoveLabelForIssue(context.Background(), owner, repo, number, label)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			logging.Debug("Label already absent", "label", label, "issue", number)
			return nil
		}
		return fmt.Errorf("failed to remove label %q: %w", label, err)
	}

	return nil
}

// SearchIssuesByLabel finds open issues carrying the given label that
// were updated since the given time.
func (c *Client) SearchIssuesByLabel(label string, since time.Time, limit int) ([]*models.Issue, error) {
	query := fmt.Sprintf("label:%q is:issue is:open updated:>%s",
		label,
		since.Format(time.RFC3339),
	)

	logging.Debug("Searching for labeled issues", "query", query)

	searchOpts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var issues []*models.Issue

	for {
		result, resp, err := c.client.Search.Issues(context.Background(), query, searchOpts)
		if err != nil {
			return nil, fmt.Errorf("error searching for issues: %w", err)
		}

		for _, issue := range result.Issues {
			// Skip pull requests; the search API returns both
			if issue.PullRequestLinks != nil {
				continue
			}

			// Extract owner/repo from the issue URL
			parts := strings.Split(issue.GetHTMLURL(), "/")
			if len(parts) < 7 {
				logging.Warn("Skipping issue with invalid URL", "url", issue.GetHTMLURL())
				continue
			}

			issues = append(issues, convertIssue(parts[3], parts[4], issue))
			if len(issues) >= limit {
				return issues, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}

		searchOpts.Page = resp.NextPage
	}

	return issues, nil
}

// convertIssue maps a go-github issue onto the local record
func convertIssue(owner, repo string, issue *github.Issue) *models.Issue {
	result := &models.Issue{
		Owner:     owner,
		Repo:      repo,
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		User:      issue.GetUser().GetLogin(),
		State:     issue.GetState(),
		CreatedAt: issue.GetCreatedAt(),
		UpdatedAt: issue.GetUpdatedAt(),
		URL:       issue.GetHTMLURL(),
		Labels:    make([]string, 0, len(issue.Labels)),
	}

	for _, label := range issue.Labels {
		if label.Name != nil {
			result.Labels = append(result.Labels, *label.Name)
		}
	}

	return result
}
