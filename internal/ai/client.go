// Package ai wraps the text-generation service used for project summaries
// and subtask suggestions. Every failure degrades to fixed fallback content.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/metrics"
)

// Fallback content returned when generation fails.
const (
	SummaryUnavailable = "AI Service Unavailable. Please check API Key."
	SummaryEmpty       = "Could not generate summary."
)

// FallbackSubtasks is returned when subtask suggestion fails.
var FallbackSubtasks = []string{"Review requirements", "Draft initial implementation", "Test functionality"}

// Generator is the text-generation capability consumed by the API.
type Generator interface {
	// Summarize returns a short executive summary of a project.
	Summarize(ctx context.Context, project domain.Project, tasks []domain.Task, users []domain.User) string

	// SuggestSubtasks returns concrete subtasks for a task.
	SuggestSubtasks(ctx context.Context, title, description string) []string
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	enabled    bool
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a Client. A disabled client always returns fallbacks.
func NewClient(cfg config.AIConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		enabled:    cfg.Enabled,
		metrics:    m,
		logger:     logger.With().Str("component", "ai").Logger(),
	}
}

// Summarize implements Generator.
func (c *Client) Summarize(ctx context.Context, project domain.Project, tasks []domain.Task, users []domain.User) string {
	if !c.enabled {
		return SummaryUnavailable
	}

	text, err := c.generate(ctx, "summary", summaryPrompt(project, tasks, users), nil)
	if err != nil {
		c.logger.Error().Err(err).Str("project_id", project.ID).Msg("summary generation failed")
		return SummaryUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return SummaryEmpty
	}
	return text
}

// SuggestSubtasks implements Generator.
func (c *Client) SuggestSubtasks(ctx context.Context, title, description string) []string {
	if !c.enabled {
		return fallbackSubtasks()
	}

	cfg := &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   &schema{Type: "ARRAY", Items: &schema{Type: "STRING"}},
	}
	text, err := c.generate(ctx, "subtasks", subtaskPrompt(title, description), cfg)
	if err != nil {
		c.logger.Error().Err(err).Str("title", title).Msg("subtask generation failed")
		return fallbackSubtasks()
	}

	var subtasks []string
	if err := json.Unmarshal([]byte(text), &subtasks); err != nil {
		c.logger.Error().Err(err).Str("title", title).Msg("malformed subtask response")
		return fallbackSubtasks()
	}
	subtasks = lo.Compact(lo.Map(subtasks, func(s string, _ int) string { return strings.TrimSpace(s) }))
	if len(subtasks) == 0 {
		c.logger.Warn().Str("title", title).Msg("empty subtask response")
		return fallbackSubtasks()
	}
	return subtasks
}

func fallbackSubtasks() []string {
	return append([]string(nil), FallbackSubtasks...)
}

func summaryPrompt(project domain.Project, tasks []domain.Task, users []domain.User) string {
	names := lo.SliceToMap(users, func(u domain.User) (string, string) { return u.ID, u.DisplayName() })
	done := lo.CountBy(tasks, func(t domain.Task) bool { return t.Status == domain.StatusDone })

	var b strings.Builder
	b.WriteString("Analyze the following project data and provide a concise executive summary (max 100 words).\n")
	b.WriteString("Highlight risks, progress, and suggest 2 actionable next steps.\n\n")
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	fmt.Fprintf(&b, "Description: %s\n", project.Description)
	fmt.Fprintf(&b, "Total Tasks: %d\n", len(tasks))
	fmt.Fprintf(&b, "Completed: %d\n", done)
	fmt.Fprintf(&b, "Team Size: %d\n\n", len(project.Members))
	b.WriteString("Task Details:\n")
	for _, t := range tasks {
		assignees := lo.Map(t.AssignedTo, func(id string, _ int) string {
			if name, ok := names[id]; ok {
				return name
			}
			return "Unknown"
		})
		list := strings.Join(assignees, ", ")
		if list == "" {
			list = "Unassigned"
		}
		fmt.Fprintf(&b, "- %s (%s): Assigned to [%s]\n", t.Title, t.Status, list)
	}
	return b.String()
}

func subtaskPrompt(title, description string) string {
	return fmt.Sprintf("For a task titled %q with description %q, suggest 3-5 concrete subtasks.", title, description)
}

// =============================================================================
// Wire types
// =============================================================================

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type  string  `json:"type"`
	Items *schema `json:"items,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate sends one prompt and returns the concatenated text of the first candidate.
func (c *Client) generate(ctx context.Context, capability, prompt string, cfg *generationConfig) (text string, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.RecordAIRequest(capability, result, time.Since(start).Seconds())
	}()

	reqBody, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse generateResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResponse.Candidates) == 0 {
		return "", nil
	}

	texts := lo.Map(apiResponse.Candidates[0].Content.Parts, func(p part, _ int) string { return p.Text })
	return strings.Join(texts, ""), nil
}

// Ensure Client implements Generator.
var _ Generator = (*Client)(nil)
