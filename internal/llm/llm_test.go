package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	r1, err := mock.Generate(context.Background(), Request{Messages: UserMessage("first")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(r1.Content))
	assert.Equal(t, 15, r1.Usage.TotalTokens)
	assert.Equal(t, StopEnd, r1.StopReason)

	r2, err := mock.Generate(context.Background(), Request{Messages: UserMessage("second")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(r2.Content))

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Messages[0].Content)
}

func TestMockProviderEmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestMockProviderConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestMockProviderValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]any{"name": "Ada"}))
	_, err := mock.Generate(context.Background(), Request{Schema: testSchema()})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv, "age is required")
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, UnknownPurpose, PurposeFrom(ctx))
	assert.Equal(t, "quiz-gen", PurposeFrom(WithPurpose(ctx, "quiz-gen")))
	assert.Equal(t, UnknownPurpose, PurposeFrom(WithPurpose(ctx, "")))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: ProviderConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: ProviderConfig{APIKey: "k"}}, false},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: ProviderConfig{APIKey: "k"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestConfigValidateNamesEnvVar(t *testing.T) {
	err := Config{Provider: ProviderGemini}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUDYTRACK_GEMINI_API_KEY")
}

func lookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestConfigFromLookup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := configFromLookup(lookup(nil))
		assert.Equal(t, ProviderAnthropic, cfg.Provider)
		assert.Equal(t, "claude-haiku", cfg.Model())
		assert.Error(t, cfg.Validate())
	})

	t.Run("explicit provider", func(t *testing.T) {
		cfg := configFromLookup(lookup(map[string]string{
			"STUDYTRACK_LLM_PROVIDER":    "openai",
			"STUDYTRACK_OPENAI_API_KEY":  "sk-1",
			"STUDYTRACK_OPENAI_MODEL":    "gpt-4.1-mini",
			"STUDYTRACK_OPENAI_BASE_URL": "http://localhost:1234/v1",
			"STUDYTRACK_GEMINI_API_KEY":  "g-1",
		}))
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "sk-1", cfg.OpenAI.APIKey)
		assert.Equal(t, "gpt-4.1-mini", cfg.Model())
		assert.Equal(t, "http://localhost:1234/v1", cfg.OpenAI.BaseURL)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("prefixed key picks provider", func(t *testing.T) {
		cfg := configFromLookup(lookup(map[string]string{"STUDYTRACK_GEMINI_API_KEY": "g-1"}))
		assert.Equal(t, ProviderGemini, cfg.Provider)
	})

	t.Run("conventional keys", func(t *testing.T) {
		cfg := configFromLookup(lookup(map[string]string{
			"ANTHROPIC_API_KEY": "a-1",
			"OPENAI_API_KEY":    "o-1",
		}))
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "o-1", cfg.OpenAI.APIKey)
		assert.Empty(t, cfg.Anthropic.APIKey)
	})
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "custom-model", resolveModel("custom-model", openaiModels))
}

func TestPricing(t *testing.T) {
	c, ok := LookupCost("gpt-4o-mini")
	require.True(t, ok)
	assert.InDelta(t, 0.15+0.6, c.Cost(1_000_000, 1_000_000), 1e-9)

	usd, ok := EstimateCost("google/gemini-2.0-flash-001", 2_000_000, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.2, usd, 1e-9)

	_, ok = EstimateCost("mock", 10, 10)
	assert.False(t, ok)
}

func TestNewMock(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: ProviderMock}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = New(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, retryNever, classify(context.Canceled))
	assert.Equal(t, retryNever, classify(&ErrMaxTokensExceeded{}))
	assert.Equal(t, retryOnce, classify(&ErrInvalidResponse{Err: errors.New("x")}))
	assert.Equal(t, retryAlways, classify(&ErrRateLimit{}))
	assert.Equal(t, retryAlways, classify(errors.New("connection reset")))
}
