package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// mockGitHubServer creates a mock GitHub server for testing
func mockGitHubServer(t *testing.T, handler http.Handler) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)

	client := NewClient("test-token")

	// Override client's base URL to point to the mock server
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("Failed to parse server URL: %v", err)
	}
	client.client.BaseURL = baseURL
	client.client.UploadURL = baseURL

	return server, client
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token")
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.client == nil {
		t.Fatal("Client has nil GitHub client")
	}
}

func TestGetAuthenticatedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		w.Write([]byte(`{"login": "octocat"}`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	login, err := client.GetAuthenticatedUser()
	if err != nil {
		t.Fatalf("GetAuthenticatedUser returned error: %v", err)
	}
	if login != "octocat" {
		t.Errorf("Expected login octocat, got %s", login)
	}
}

func TestGetIssueWithFeedback(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/testowner/testrepo/issues/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"number": 7,
			"title": "Add export feature",
			"body": "## Stakeholders\n- @alice\n- @bob",
			"state": "open",
			"user": {"login": "carol"},
			"html_url": "https://github.com/testowner/testrepo/issues/7",
			"labels": [{"name": "pending-review"}]
		}`))
	})

	mux.HandleFunc("/repos/testowner/testrepo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "user": {"login": "alice"}, "body": "LGTM"},
			{"id": 2, "user": {"login": "bob"}, "body": "still reading"}
		]`))
	})

	mux.HandleFunc("/repos/testowner/testrepo/issues/7/reactions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 11, "user": {"login": "bob"}, "content": "+1"}
		]`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	issue, err := client.GetIssueWithFeedback("testowner", "testrepo", 7)
	if err != nil {
		t.Fatalf("GetIssueWithFeedback returned error: %v", err)
	}

	if issue.Number != 7 {
		t.Errorf("Expected issue number 7, got %d", issue.Number)
	}
	if issue.Owner != "testowner" || issue.Repo != "testrepo" {
		t.Errorf("Expected owner/repo testowner/testrepo, got %s/%s", issue.Owner, issue.Repo)
	}
	if !issue.HasLabel("pending-review") {
		t.Errorf("Expected pending-review label, got %v", issue.Labels)
	}
	if len(issue.Comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(issue.Comments))
	}
	if issue.Comments[0].User != "alice" || issue.Comments[0].Body != "LGTM" {
		t.Errorf("Unexpected first comment: %+v", issue.Comments[0])
	}
	if len(issue.Reactions) != 1 {
		t.Fatalf("Expected 1 reaction, got %d", len(issue.Reactions))
	}
	if issue.Reactions[0].User != "bob" || issue.Reactions[0].Content != "+1" {
		t.Errorf("Unexpected reaction: %+v", issue.Reactions[0])
	}
}

func TestCreateIssue(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/testowner/testrepo/issues", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}

		var payload struct {
			Title  string   `json:"title"`
			Body   string   `json:"body"`
			Labels []string `json:"labels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if payload.Title != "New requirement" {
			t.Errorf("Expected title New requirement, got %s", payload.Title)
		}
		if len(payload.Labels) != 1 || payload.Labels[0] != "pending-review" {
			t.Errorf("Expected pending-review label, got %v", payload.Labels)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"number": 42,
			"title": "New requirement",
			"html_url": "https://github.com/testowner/testrepo/issues/42"
		}`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	issue, err := client.CreateIssue("testowner", "testrepo", "New requirement", "body", []string{"pending-review"})
	if err != nil {
		t.Fatalf("CreateIssue returned error: %v", err)
	}
	if issue.Number != 42 {
		t.Errorf("Expected issue number 42, got %d", issue.Number)
	}
}

func TestCommentOnIssue(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/testowner/testrepo/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1, "body": "Test comment"}`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	if err := client.CommentOnIssue("testowner", "testrepo", 1, "Test comment"); err != nil {
		t.Fatalf("CommentOnIssue returned error: %v", err)
	}
}

func TestAddAndRemoveLabels(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/testowner/testrepo/issues/1/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		w.Write([]byte(`[{"name": "approved"}, {"name": "ready-for-development"}]`))
	})

	mux.HandleFunc("/repos/testowner/testrepo/issues/1/labels/pending-review", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("Expected DELETE method, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	if err := client.AddLabels("testowner", "testrepo", 1, []string{"approved", "ready-for-development"}); err != nil {
		t.Fatalf("AddLabels returned error: %v", err)
	}
	if err := client.RemoveLabel("testowner", "testrepo", 1, "pending-review"); err != nil {
		t.Fatalf("RemoveLabel returned error: %v", err)
	}
}

func TestRemoveLabelAlreadyAbsent(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/testowner/testrepo/issues/1/labels/pending-review", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Label does not exist"}`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	// Removing a label that is not on the issue must not fail
	if err := client.RemoveLabel("testowner", "testrepo", 1, "pending-review"); err != nil {
		t.Fatalf("RemoveLabel on absent label returned error: %v", err)
	}
}

func TestSearchIssuesByLabel(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			t.Error("Expected non-empty search query")
		}

		w.Write([]byte(`{
			"total_count": 2,
			"items": [
				{
					"number": 3,
					"title": "Billing requirements",
					"state": "open",
					"html_url": "https://github.com/testowner/testrepo/issues/3",
					"labels": [{"name": "pending-review"}]
				},
				{
					"number": 4,
					"title": "A pull request",
					"state": "open",
					"html_url": "https://github.com/testowner/testrepo/pull/4",
					"pull_request": {"url": "https://api.github.com/repos/testowner/testrepo/pulls/4"}
				}
			]
		}`))
	})

	server, client := mockGitHubServer(t, mux)
	defer server.Close()

	issues, err := client.SearchIssuesByLabel("pending-review", time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("SearchIssuesByLabel returned error: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue after filtering pull requests, got %d", len(issues))
	}
	if issues[0].Number != 3 {
		t.Errorf("Expected issue number 3, got %d", issues[0].Number)
	}
	if issues[0].Owner != "testowner" || issues[0].Repo != "testrepo" {
		t.Errorf("Expected owner/repo testowner/testrepo, got %s/%s", issues[0].Owner, issues[0].Repo)
	}
}
