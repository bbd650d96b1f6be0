package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVisitContext() VisitContext {
	specialty := "Cardiology"
	desc := "dull ache behind the eyes"
	return VisitContext{
		VisitDate:   "2026-09-10",
		VisitTime:   "14:30:00",
		VisitReason: "Annual checkup",
		Provider:    &ProviderContext{Name: "Dr. Chen", Type: "specialist", Specialty: &specialty},
		Symptoms: []SymptomContext{
			{Name: "Headache", Severity: 6, OnsetDate: "2026-08-01", Status: "active", Description: &desc},
		},
		Medications: []MedicationContext{
			{Name: "Ibuprofen", Dosage: "200mg", Frequency: "as needed", Status: "taking", ConditionsOrSymptoms: "headaches"},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", "claude-sonnet-4-5")
	require.NoError(t, err)
	c.baseURL = srv.URL
	return c
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(b)
}

func TestGenerateVisitQuestionsRequestShape(t *testing.T) {
	var got messageRequest
	var apiKey, version string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(textReply(`["Q1","Q2"]`)))
	})

	questions, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, questions)

	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "2023-06-01", version)
	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	assert.Equal(t, 5000, got.MaxTokens)
	assert.Equal(t, "enabled", got.Thinking.Type)
	assert.Equal(t, 3500, got.Thinking.BudgetTokens)
	require.Len(t, got.Messages, 1)
	prompt := got.Messages[0].Content
	assert.Contains(t, prompt, "Dr. Chen (specialist, Cardiology)")
	assert.Contains(t, prompt, "Headache (severity 6/10, started 2026-08-01, status: active)")
	assert.Contains(t, prompt, "Ibuprofen 200mg, as needed (status: taking) - for headaches")
}

func TestGenerateVisitQuestionsStripsMarkdownFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textReply("Here are your questions:\n```json\n[\"What about dosage?\", \"Any side effects?\"]\n```")))
	})

	questions, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"What about dosage?", "Any side effects?"}, questions)
}

func TestGenerateVisitQuestionsParseFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textReply("I cannot answer that as a JSON array.")))
	})

	_, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse AI response as JSON. Response was: I cannot answer")
}

func TestParseFailureExcerptStaysValidUTF8(t *testing.T) {
	// The 500th character of the reply is multi-byte; a byte-indexed cut
	// would slice through it and corrupt the error message.
	reply := strings.Repeat("a", 499) + "日本語のテキスト, not a JSON array"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textReply(reply)))
	})

	_, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.True(t, strings.HasSuffix(err.Error(), "日"), err.Error())
}

func TestGenerateVisitQuestionsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI generation failed")
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateVisitQuestionsEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	_, err := c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text response from AI")
}

func TestGenerateVisitQuestionsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c, err := NewClient("test-key", "claude-sonnet-4-5")
	require.NoError(t, err)
	c.baseURL = srv.URL

	_, err = c.GenerateVisitQuestions(context.Background(), testVisitContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI generation failed")
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	_, err := NewClient("", "claude-sonnet-4-5")
	assert.Error(t, err)
	_, err = NewClient("key", "")
	assert.Error(t, err)
}

func TestPromptFallbacksWithoutData(t *testing.T) {
	prompt := buildVisitPrepQuestionsPrompt(VisitContext{
		VisitDate:   "2026-09-10",
		VisitTime:   "Not specified",
		VisitReason: "Follow-up",
	})
	assert.Contains(t, prompt, "None logged")
	assert.Contains(t, prompt, "Provider information not available")
	assert.Contains(t, prompt, "2026-09-10 at Not specified")
}
