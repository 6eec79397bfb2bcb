// Package advice mengubah deskripsi task bebas menjadi field task terstruktur
// lewat API chat completion.
package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/internal/models"

	"github.com/sashabaranov/go-openai"
)

const maxTitleRunes = 60

// ErrAdvice dibungkus oleh semua kegagalan adapter. Tidak ada retry.
var ErrAdvice = errors.New("could not generate task advice")

// Suggestion adalah hasil ekstraksi untuk membuat task baru.
type Suggestion struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Labels      []string        `json:"labels"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	AssignedTo  string          `json:"assignedTo,omitempty"`
	Priority    models.Priority `json:"priority"`
}

type Advisor interface {
	Suggest(ctx context.Context, text, assigneeID string) (Suggestion, error)
}

const systemPrompt = `You are an assistant that converts free-form task descriptions into a JSON object with the following fields:
- title: a short summary (max 60 chars).
- description: longer details.
- labels: an array of string labels (tags). Assign labels based on the task's field and side of the tech stack (if necessary).
- dueDate: in ISO format (YYYY-MM-DD), if mentioned; otherwise determine how long this task should take. Today is %s.
- assignedTo: ID of assignee (string), if mentioned; otherwise null.
- priority: one of "High", "Medium", or "Low"; estimate based on severity words or context.

Output ONLY valid JSON. For example:
{
  "title": "Fix sales widget by region",
  "description": "Create a widget to show sales data by region as described in Q2 meeting notes.",
  "labels": ["frontend", "Sales"],
  "dueDate": "2025-06-10",
  "assignedTo": null,
  "priority": "High"
}
If any field cannot be inferred, set it to null or an empty array. DO NOT include the ID of the assigned user in the "description" field.
Here is the task: %s
Assign to user with ID: %s.`

// OpenAI memanggil endpoint chat completions yang kompatibel dengan OpenAI.
type OpenAI struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
	now     func() time.Time
}

// NewOpenAI membuat adapter. baseURL kosong berarti api.openai.com.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		now:     time.Now,
	}
}

func (o *OpenAI) Suggest(ctx context.Context, text, assigneeID string) (Suggestion, error) {
	if o.apiKey == "" {
		return Suggestion{}, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrAdvice)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: BuildPrompt(text, assigneeID, o.now()),
			},
		},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrAdvice, err)
	}
	if len(resp.Choices) == 0 {
		return Suggestion{}, fmt.Errorf("%w: empty response", ErrAdvice)
	}

	s, err := Parse(resp.Choices[0].Message.Content)
	if err != nil {
		return Suggestion{}, err
	}
	if assigneeID != "" {
		s.AssignedTo = assigneeID
	}
	return s, nil
}

func BuildPrompt(text, assigneeID string, now time.Time) string {
	if assigneeID == "" {
		assigneeID = "none"
	}
	return fmt.Sprintf(systemPrompt, now.Format("2006-01-02 (Monday)"), strings.TrimSpace(text), assigneeID)
}

type rawSuggestion struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Labels      []string `json:"labels"`
	DueDate     *string  `json:"dueDate"`
	AssignedTo  *string  `json:"assignedTo"`
	Priority    *string  `json:"priority"`
}

// Parse membaca balasan model. Balasan harus berupa objek JSON (boleh dibungkus
// code fence) dengan title yang tidak kosong.
func Parse(raw string) (Suggestion, error) {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return Suggestion{}, fmt.Errorf("%w: empty response", ErrAdvice)
	}

	var r rawSuggestion
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Suggestion{}, fmt.Errorf("%w: response is not valid JSON: %v", ErrAdvice, err)
	}

	s := Suggestion{Labels: []string{}, Priority: normalizePriority(r.Priority)}
	if r.Title != nil {
		s.Title = truncate(strings.TrimSpace(*r.Title), maxTitleRunes)
	}
	if s.Title == "" {
		return Suggestion{}, fmt.Errorf("%w: response has no title", ErrAdvice)
	}
	if r.Description != nil {
		s.Description = strings.TrimSpace(*r.Description)
	}
	for _, l := range r.Labels {
		if l = strings.TrimSpace(l); l != "" {
			s.Labels = append(s.Labels, l)
		}
	}
	if r.DueDate != nil {
		s.DueDate = ParseDate(*r.DueDate)
	}
	if r.AssignedTo != nil {
		s.AssignedTo = strings.TrimSpace(*r.AssignedTo)
	}
	return s, nil
}

// ParseDate menerima YYYY-MM-DD atau RFC3339. Nilai lain menghasilkan nil.
func ParseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func normalizePriority(p *string) models.Priority {
	if p == nil {
		return models.PriorityMedium
	}
	switch strings.ToLower(strings.TrimSpace(*p)) {
	case "high":
		return models.PriorityHigh
	case "low":
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
