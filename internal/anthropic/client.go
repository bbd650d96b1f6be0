// Package anthropic is a minimal client for the Anthropic messages API,
// covering the single call this service makes: turning a visit context
// into a JSON array of preparation questions.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"

	maxTokens      = 5000
	thinkingBudget = 3500
)

// Client calls the Anthropic messages API over plain HTTP.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given key and model. The timeout
// bounds the whole call; question generation with extended thinking runs
// for several seconds under normal conditions.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model == "" {
		return nil, errors.New("anthropic model is required")
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// VisitContext carries the health data embedded into the prompt.
type VisitContext struct {
	VisitDate   string
	VisitTime   string
	VisitReason string

	Provider *ProviderContext

	Symptoms    []SymptomContext
	Medications []MedicationContext
}

type ProviderContext struct {
	Name      string
	Type      string
	Specialty *string
}

type SymptomContext struct {
	Name        string
	Severity    int
	OnsetDate   string
	Status      string
	Description *string
	Triggers    *string
}

type MedicationContext struct {
	Name                 string
	Dosage               string
	Frequency            string
	Status               string
	ConditionsOrSymptoms string
}

type messageRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Thinking    thinkingParam `json:"thinking"`
	Messages    []message     `json:"messages"`
}

type thinkingParam struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

var fencedArrayRx = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// GenerateVisitQuestions sends the assembled prompt and parses the reply
// into a list of question strings. The model is asked for a bare JSON
// array but often wraps it in a markdown fence, so the fence is stripped
// before parsing. One call, one parse attempt, no retries.
func (c *Client) GenerateVisitQuestions(ctx context.Context, vc VisitContext) ([]string, error) {
	payload := messageRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 1.0,
		Thinking:    thinkingParam{Type: "enabled", BudgetTokens: thinkingBudget},
		Messages:    []message{{Role: "user", Content: buildVisitPrepQuestionsPrompt(vc)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("AI generation failed: anthropic request returned status %d", resp.StatusCode)
	}

	var envelope messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	var raw string
	for _, block := range envelope.Content {
		if block.Type == "text" && block.Text != "" {
			raw = block.Text
			break
		}
	}
	if raw == "" {
		return nil, errors.New("AI generation failed: no text response from AI")
	}

	text := raw
	if m := fencedArrayRx.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var questions []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON. Response was: %s", excerpt(raw, 500))
	}
	return questions, nil
}

// excerpt caps s at n runes. Cutting by runes instead of bytes keeps a
// multi-byte character at the edge from being split into invalid UTF-8.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
