// Package planner turns approved requirement issues into Microsoft
// Planner tasks.
package planner

import (
	"fmt"
	"strings"

	"github.com/reqsteward/reqsteward/internal/models"
	"github.com/reqsteward/reqsteward/internal/requirements"
)

// Section names that yield development tasks, in the order tasks are
// created.
const (
	SectionFunctionalRequirements = "Functional Requirements"
	SectionAcceptanceCriteria     = "Acceptance Criteria"
)

// Task is one unit of development work derived from a requirements
// document.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// DeriveTasks extracts development tasks from an approved requirement
// issue. Each bullet item in the functional requirements and
// acceptance criteria sections becomes one task; an issue whose
// document carries neither section yields a single umbrella task so
// the approval still lands in the plan.
func DeriveTasks(issue *models.Issue) []Task {
	var tasks []Task

	for _, section := range []string{SectionFunctionalRequirements, SectionAcceptanceCriteria} {
		body, found := requirements.ExtractSection(issue.Body, section)
		if !found {
			continue
		}
		for _, item := range requirements.SectionItems(body) {
			tasks = append(tasks, Task{
				Title:       taskTitle(issue, item),
				Description: fmt.Sprintf("From %s of %s", section, issue.URL),
				Source:      section,
			})
		}
	}

	if len(tasks) == 0 {
		tasks = append(tasks, Task{
			Title:       fmt.Sprintf("[#%d] %s", issue.Number, issue.Title),
			Description: fmt.Sprintf("Implement the approved requirements in %s", issue.URL),
			Source:      "issue",
		})
	}

	return tasks
}

// taskTitle prefixes the item with the issue number so tasks from the
// same requirement group together in the plan. Planner caps titles at
// 255 characters.
func taskTitle(issue *models.Issue, item string) string {
	title := fmt.Sprintf("[#%d] %s", issue.Number, strings.TrimSpace(item))
	if len(title) > 255 {
		title = title[:252] + "..."
	}
	return title
}
