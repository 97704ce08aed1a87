package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func serve(t *testing.T, status int, body any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicAt(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(url), option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	url := serve(t, http.StatusOK, anthropicMessage(`{"name":"Ada","age":36}`, "end_turn"))
	p := anthropicAt(t, url)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write quizzes.",
		Messages:  UserMessage("Make one."),
		Schema:    testSchema(),
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.JSONEq(t, `{"name":"Ada","age":36}`, string(resp.Content))
}

func TestAnthropicTruncatedStructuredOutput(t *testing.T) {
	url := serve(t, http.StatusOK, anthropicMessage(`{"name":"Ad`, "max_tokens"))
	_, err := anthropicAt(t, url).Generate(context.Background(), Request{
		Messages: UserMessage("x"), Schema: testSchema(), MaxTokens: 5,
	})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestAnthropicErrors(t *testing.T) {
	body := map[string]any{"type": "error", "error": map[string]any{"type": "api_error", "message": "boom"}}

	_, err := anthropicAt(t, serve(t, http.StatusTooManyRequests, body)).
		Generate(context.Background(), Request{Messages: UserMessage("x"), MaxTokens: 10})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = anthropicAt(t, serve(t, http.StatusInternalServerError, body)).
		Generate(context.Background(), Request{Messages: UserMessage("x"), MaxTokens: 10})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestNewAnthropicProviderRequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(ProviderConfig{})
	assert.Error(t, err)
}

func openAIAt(t *testing.T, url string) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	p := openAIAt(t, serve(t, http.StatusOK, chatCompletion(`{"name":"Bo","age":9}`, "stop")))
	resp, err := p.Generate(context.Background(), Request{
		System: "sys", Messages: UserMessage("go"), Schema: testSchema(), MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 25, resp.Usage.OutputTokens)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAISchemaMismatch(t *testing.T) {
	p := openAIAt(t, serve(t, http.StatusOK, chatCompletion(`{"name":"Bo"}`, "stop")))
	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("go"), Schema: testSchema()})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestOpenAIErrors(t *testing.T) {
	body := map[string]any{"error": map[string]any{"type": "server_error", "message": "boom"}}

	_, err := openAIAt(t, serve(t, http.StatusTooManyRequests, body)).
		Generate(context.Background(), Request{Messages: UserMessage("x")})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = openAIAt(t, serve(t, http.StatusBadGateway, body)).
		Generate(context.Background(), Request{Messages: UserMessage("x")})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestOpenAIExpandsShortModel(t *testing.T) {
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", Model: "gpt-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", p.ModelID())
}

func TestOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "sk-or", Model: "gpt-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-mini", p.ModelID(), "model IDs pass through")

	_, err = NewOpenRouterProvider(ProviderConfig{Model: "x"})
	assert.Error(t, err)
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "description": "who"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer"},
				"minItems": 2,
			},
		},
		"required": []any{"name", "age"},
	}

	s := geminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 4)
	assert.Equal(t, genai.TypeString, s.Properties["name"].Type)
	assert.Equal(t, "who", s.Properties["name"].Description)
	assert.Equal(t, genai.TypeInteger, s.Properties["age"].Type)
	assert.Equal(t, []string{"A", "B", "C"}, s.Properties["grade"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["scores"].Type)
	assert.Equal(t, genai.TypeInteger, s.Properties["scores"].Items.Type)
	require.NotNil(t, s.Properties["scores"].MinItems)
	assert.Equal(t, int64(2), *s.Properties["scores"].MinItems)
	assert.Equal(t, []string{"name", "age"}, s.Required)
}
