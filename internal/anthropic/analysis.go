package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	anthropicAPI "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/models"
	"github.com/reqsteward/reqsteward/internal/requirements"
)

// Constants for API
const (
	SummaryModel  = "claude-3-7-sonnet-20250219" // Latest Sonnet model
	ReviewerModel = "claude-3-5-haiku-20241022"  // Latest Haiku model
)

// Document sections a complete requirements document is expected to
// carry.
var expectedSections = []string{
	"Stakeholders",
	"Functional Requirements",
	"Acceptance Criteria",
}

// RequirementsAnalyzer reviews requirement documents using the
// Anthropic API.
type RequirementsAnalyzer struct {
	config *config.Config
	client *anthropicAPI.Client
}

// Analysis is the outcome of a requirements review
type Analysis struct {
	Summary         string   `json:"summary"`
	MissingSections []string `json:"missing_sections"`
	Questions       string   `json:"questions,omitempty"`
}

// NewAnalyzer creates a new requirements analyzer
func NewAnalyzer(cfg *config.Config) *RequirementsAnalyzer {
	// Log basic info without revealing full token
	var tokenStatus string
	if cfg.Anthropic.Token == "" {
		tokenStatus = "empty"
	} else {
		tokenLen := len(cfg.Anthropic.Token)
		last4 := ""
		if tokenLen >= 4 {
			last4 = cfg.Anthropic.Token[tokenLen-4:]
		}
		tokenStatus = fmt.Sprintf("provided (length: %d, ends with: %s)", tokenLen, last4)
	}
	logging.Info("Creating Anthropic analyzer", "token_status", tokenStatus)

	// Attempt to decode the token if it looks base64 encoded
	token := cfg.Anthropic.Token
	if !strings.HasPrefix(token, "sk-ant-") {
		decoded, err := base64.StdEncoding.DecodeString(token)
		if err == nil {
			decodedStr := string(decoded)
			if strings.HasPrefix(decodedStr, "sk-ant-") {
				token = decodedStr
				logging.Info("Successfully decoded base64 Anthropic token")
			}
		}
	}

	client := anthropicAPI.NewClient(
		option.WithAPIKey(token),
	)

	if !strings.HasPrefix(token, "sk-ant-") {
		logging.Warn("Anthropic token appears to be in incorrect format",
			"format_valid", strings.HasPrefix(token, "sk-ant-"))
	}

	return &RequirementsAnalyzer{
		config: cfg,
		client: client,
	}
}

// AnalyzeIssue reviews a requirement issue: it summarizes the document
// plus its discussion and asks for clarifying questions on whatever
// the document leaves open. Section completeness is checked locally,
// so that part of the result is available even when the API fails.
func (a *RequirementsAnalyzer) AnalyzeIssue(issue *models.Issue) (*Analysis, error) {
	analysis := &Analysis{
		MissingSections: missingSections(issue.Body),
	}

	transcript := formatIssueTranscript(issue)
	logging.Debug("Created requirements transcript",
		"length", len(transcript),
		"issue_number", issue.Number,
		"comment_count", len(issue.Comments))

	logging.Info("Requesting requirements summary from Anthropic API")
	summary, err := a.summarize(transcript)
	if err != nil {
		logging.Error("Failed to summarize requirements", "error", err)
		return analysis, err
	}
	analysis.Summary = summary

	logging.Info("Requesting clarifying questions from Anthropic API")
	questions, err := a.clarifyingQuestions(summary)
	if err != nil {
		// The summary alone is still useful
		logging.Error("Failed to generate clarifying questions", "error", err)
		return analysis, nil
	}
	analysis.Questions = questions

	return analysis, nil
}

// missingSections lists the expected sections the document lacks
func missingSections(document string) []string {
	var missing []string
	for _, name := range expectedSections {
		if _, found := requirements.ExtractSection(document, name); !found {
			missing = append(missing, name)
		}
	}
	return missing
}

// formatIssueTranscript creates a formatted transcript of the issue and its comments
func formatIssueTranscript(issue *models.Issue) string {
	var transcript strings.Builder

	transcript.WriteString(fmt.Sprintf("ISSUE #%d: %s\n\n", issue.Number, issue.Title))
	transcript.WriteString(fmt.Sprintf("Created by: %s\n", issue.User))
	transcript.WriteString(fmt.Sprintf("State: %s\n", issue.State))

	if len(issue.Labels) > 0 {
		transcript.WriteString(fmt.Sprintf("Labels: %s\n", strings.Join(issue.Labels, ", ")))
	}

	transcript.WriteString("\nREQUIREMENTS DOCUMENT:\n")
	transcript.WriteString(issue.Body)
	transcript.WriteString("\n\n")

	if len(issue.Comments) > 0 {
		transcript.WriteString("DISCUSSION:\n\n")
		for i, comment := range issue.Comments {
			transcript.WriteString(fmt.Sprintf("--- Comment #%d by %s (%s) ---\n",
				i+1,
				comment.User,
				comment.CreatedAt.Format("2006-01-02")))
			transcript.WriteString(comment.Body)
			transcript.WriteString("\n\n")
		}
	}

	return transcript.String()
}

// summarize condenses the requirements transcript
func (a *RequirementsAnalyzer) summarize(transcript string) (string, error) {
	prompt := `You are a technical project manager reviewing a requirements document on GitHub. Analyze this transcript and provide a concise summary.
Focus on what is being requested, who the stakeholders are, and any open disagreements in the discussion.
Ignore off-topic comments.

TRANSCRIPT:
${transcript}

Provide a concise summary in 1-3 short paragraphs.`

	prompt = strings.Replace(prompt, "${transcript}", transcript, 1)

	logging.Debug("Anthropic API request details for summarization",
		"model", SummaryModel,
		"max_tokens", 500,
		"prompt_length", len(prompt))

	message, err := a.client.Messages.New(context.Background(), anthropicAPI.MessageNewParams{
		Model:     anthropicAPI.F(SummaryModel),
		MaxTokens: anthropicAPI.F(int64(500)),
		Messages: anthropicAPI.F([]anthropicAPI.MessageParam{
			anthropicAPI.NewUserMessage(
				anthropicAPI.NewTextBlock(prompt),
			),
		}),
	})

	if err != nil {
		logging.Error("Anthropic API error",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err))
		return "", fmt.Errorf("failed to summarize requirements: %w", err)
	}

	responseText := textContent(message)
	if responseText == "" {
		logging.Warn("Empty response from Anthropic API")
		return "", fmt.Errorf("empty response from API")
	}

	logging.Info("Successfully received response from Anthropic API",
		"response_length", len(responseText),
		"content_items", len(message.Content))

	return responseText, nil
}

// clarifyingQuestions asks for the questions a reviewer should raise
// before approving.
func (a *RequirementsAnalyzer) clarifyingQuestions(summary string) (string, error) {
	prompt := `You are reviewing a software requirements summary before stakeholder sign-off. List the clarifying questions a reviewer should ask before approving, covering ambiguous scope, missing acceptance criteria, and unstated constraints.

Requirements Summary:
${summary}

Give a short markdown bullet list of at most 5 questions. If the requirements are complete and unambiguous, respond with exactly: none`

	prompt = strings.Replace(prompt, "${summary}", summary, 1)

	logging.Debug("Anthropic API request details for clarifying questions",
		"model", ReviewerModel,
		"max_tokens", 300,
		"prompt_length", len(prompt))

	message, err := a.client.Messages.New(context.Background(), anthropicAPI.MessageNewParams{
		Model:     anthropicAPI.F(ReviewerModel),
		MaxTokens: anthropicAPI.F(int64(300)),
		Messages: anthropicAPI.F([]anthropicAPI.MessageParam{
			anthropicAPI.NewUserMessage(
				anthropicAPI.NewTextBlock(prompt),
			),
		}),
	})

	if err != nil {
		logging.Error("Failed to generate clarifying questions",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err))
		return "", fmt.Errorf("failed to generate clarifying questions: %w", err)
	}

	questions := strings.TrimSpace(textContent(message))
	if strings.EqualFold(questions, "none") {
		return "", nil
	}

	return questions, nil
}

// textContent concatenates the text blocks of a message
func textContent(message *anthropicAPI.Message) string {
	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	return text
}
