package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blink-new/studytrack/internal/store"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}
}

var okReply = MockResponse{Content: json.RawMessage(`{"ok":true}`)}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		replies   []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{okReply}, false, 1},
		{"transient then ok", []MockResponse{down(), okReply}, false, 2},
		{"all attempts fail", []MockResponse{down(), down(), down(), okReply}, true, 3},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, true, 1},
		{"invalid retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			okReply,
		}, true, 2},
		{"rate limit honours retry-after", []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
			okReply,
		}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	mock := NewMockProvider(down(), down(), okReply)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryBackoffCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := 0; attempt < 5; attempt++ {
		d := r.backoff(attempt, errors.New("x"))
		assert.LessOrEqual(t, d, 2400*time.Millisecond)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
	}
}

type slowProvider struct{ calls atomic.Int32 }

func (s *slowProvider) ModelID() string { return "slow" }

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	s.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeout(t *testing.T) {
	slow := &slowProvider{}
	p := WithTimeout(slow, 5*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "slow", p.ModelID())

	assert.Same(t, Provider(slow), WithTimeout(slow, 0))
}

var dbSeq atomic.Int32

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:llmtest%d?mode=memory&cache=shared", dbSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecorderStoresEvents(t *testing.T) {
	st := openStore(t)
	repo := st.EventRepo()
	core, logs := observer.New(zapcore.DebugLevel)

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"q":1}`), Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		down(),
	)
	p := WithRecorder(mock, ProviderMock, repo, zap.New(core))
	ctx := WithPurpose(context.Background(), "quiz-gen")

	_, err := p.Generate(ctx, Request{System: "be brief", Messages: UserMessage("hello"), Schema: nil})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{Messages: UserMessage("again")})
	require.Error(t, err)

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, ok := events[0], events[1]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.ErrorMessage, "down")
	assert.True(t, ok.Success)
	assert.Equal(t, "quiz-gen", ok.Purpose)
	assert.Equal(t, ProviderMock, ok.Provider)
	assert.Equal(t, "mock", ok.Model)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\nbe brief")
	assert.Contains(t, ok.RequestBody, "[user]\nhello")
	assert.JSONEq(t, `{"q":1}`, ok.ResponseBody)

	assert.Equal(t, 1, logs.FilterMessage("llm request").Len())
	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
}

type failingRepo struct{ store.EventRepo }

func (failingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func TestRecorderToleratesRepoFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := WithRecorder(NewMockProvider(okReply), ProviderMock, failingRepo{}, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("recording llm request").Len())
}

func TestRecorderWithoutRepo(t *testing.T) {
	p := WithRecorder(NewMockProvider(okReply), ProviderMock, nil, nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestRenderRequestIncludesSchema(t *testing.T) {
	out := renderRequest(Request{Messages: UserMessage("q"), Schema: testSchema()})
	assert.Contains(t, out, "[schema: test-object]")
	assert.Contains(t, out, `"required":["name","age"]`)
}
