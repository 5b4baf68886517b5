package planner

import (
	"strings"
	"testing"

	"github.com/reqsteward/reqsteward/internal/models"
)

func TestDeriveTasks(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTitles []string
	}{
		{
			name: "functional requirements and acceptance criteria",
			body: "## Functional Requirements\n" +
				"- Export data as CSV\n" +
				"- Export data as JSON\n\n" +
				"## Acceptance Criteria\n" +
				"- [ ] Download completes under 5s\n",
			wantTitles: []string{
				"[#12] Export data as CSV",
				"[#12] Export data as JSON",
				"[#12] Download completes under 5s",
			},
		},
		{
			name:       "no task sections yields umbrella task",
			body:       "## Stakeholders\n- @alice\n",
			wantTitles: []string{"[#12] Export feature"},
		},
		{
			name: "empty sections yield umbrella task",
			body: "## Functional Requirements\n\n## Acceptance Criteria\n",
			wantTitles: []string{
				"[#12] Export feature",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := &models.Issue{
				Number: 12,
				Title:  "Export feature",
				Body:   tt.body,
				URL:    "https://github.com/testowner/testrepo/issues/12",
			}

			tasks := DeriveTasks(issue)
			if len(tasks) != len(tt.wantTitles) {
				t.Fatalf("Expected %d tasks, got %d: %+v", len(tt.wantTitles), len(tasks), tasks)
			}
			for i, want := range tt.wantTitles {
				if tasks[i].Title != want {
					t.Errorf("Task %d title = %q, want %q", i, tasks[i].Title, want)
				}
			}
		})
	}
}

func TestTaskTitleTruncation(t *testing.T) {
	issue := &models.Issue{Number: 3, Title: "Big"}
	item := strings.Repeat("x", 300)

	title := taskTitle(issue, item)
	if len(title) > 255 {
		t.Errorf("Expected title capped at 255 characters, got %d", len(title))
	}
	if !strings.HasSuffix(title, "...") {
		t.Errorf("Expected truncated title to end with ellipsis, got %q", title[len(title)-10:])
	}
}
