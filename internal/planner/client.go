package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client talks to the Microsoft Graph Planner API using application
// credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	planID     string
	bucketID   string
}

// NewClient creates a Planner client from the configured Graph
// application credentials.
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.Planner.Enabled {
		return nil, fmt.Errorf("planner integration is not enabled")
	}
	if cfg.Planner.TenantID == "" || cfg.Planner.ClientID == "" || cfg.Planner.ClientSecret == "" {
		return nil, fmt.Errorf("planner requires tenant ID, client ID and client secret")
	}
	if cfg.Planner.PlanID == "" {
		return nil, fmt.Errorf("planner requires a plan ID")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.Planner.ClientID,
		ClientSecret: cfg.Planner.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.Planner.TenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	httpClient := creds.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    graphBaseURL,
		planID:     cfg.Planner.PlanID,
		bucketID:   cfg.Planner.BucketID,
	}, nil
}

// CreatedTask is the Planner task record returned by the Graph API
type CreatedTask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateTasksForIssue derives tasks from the issue and creates each of
// them in the configured plan. Creation stops at the first failure so
// a rerun can pick up where it left off without duplicating earlier
// tasks.
func (c *Client) CreateTasksForIssue(ctx context.Context, issue *models.Issue) ([]CreatedTask, error) {
	tasks := DeriveTasks(issue)

	created := make([]CreatedTask, 0, len(tasks))
	for _, task := range tasks {
		record, err := c.createTask(ctx, task)
		if err != nil {
			return created, fmt.Errorf("failed to create planner task %q: %w", task.Title, err)
		}
		created = append(created, *record)

		logging.Info("Created planner task",
			"task_id", record.ID,
			"title", record.Title,
			"issue", issue.Number)
	}

	return created, nil
}

func (c *Client) createTask(ctx context.Context, task Task) (*CreatedTask, error) {
	payload := map[string]string{
		"planId": c.planID,
		"title":  task.Title,
	}
	if c.bucketID != "" {
		payload["bucketId"] = c.bucketID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/planner/tasks", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, string(data))
	}

	var record CreatedTask
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}

	if task.Description != "" {
		if err := c.setTaskDescription(ctx, record.ID, task.Description); err != nil {
			// The task exists; a missing description is not fatal
			logging.Warn("Failed to set task description", "task_id", record.ID, "error", err)
		}
	}

	return &record, nil
}

// setTaskDescription updates the task details resource. Graph demands
// the current ETag via If-Match on every details update.
func (c *Client) setTaskDescription(ctx context.Context, taskID, description string) error {
	detailsURL := fmt.Sprintf("%s/planner/tasks/%s/details", c.baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build details request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("details request failed: %w", err)
	}
	etag := resp.Header.Get("ETag")
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || etag == "" {
		return fmt.Errorf("failed to read task details (status %d)", resp.StatusCode)
	}

	body, err := json.Marshal(map[string]string{"description": description})
	if err != nil {
		return fmt.Errorf("failed to encode description: %w", err)
	}

	patch, err := http.NewRequestWithContext(ctx, http.MethodPatch, detailsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build patch request: %w", err)
	}
	patch.Header.Set("Content-Type", "application/json")
	patch.Header.Set("If-Match", etag)

	patchResp, err := c.httpClient.Do(patch)
	if err != nil {
		return fmt.Errorf("patch request failed: %w", err)
	}
	defer patchResp.Body.Close()

	if patchResp.StatusCode != http.StatusNoContent && patchResp.StatusCode != http.StatusOK {
		return fmt.Errorf("graph API returned status %d", patchResp.StatusCode)
	}

	return nil
}
