// Package llm is a small provider-neutral client for structured LLM output.
// Quiz generation uses it to turn a study material into questions.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a response for a request.
type Provider interface {
	// Generate sends req and returns the model's output. When req.Schema is
	// set the provider asks for structured output and the returned Content
	// has been validated against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model this provider talks to.
	ModelID() string
}

// Request is one generation call.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single-turn conversation.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema the response must satisfy.
type Schema struct {
	// Name is kebab-case; providers use it as the tool or format name.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// finish validates content against schema and assembles a Response. A
// truncated structured response is reported as ErrMaxTokensExceeded rather
// than as a schema failure.
func finish(schema *Schema, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if schema != nil {
		if err := validateResponse(schema, content); err != nil {
			if stop == StopMaxTokens {
				return nil, &ErrMaxTokensExceeded{Content: content}
			}
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

type purposeKey struct{}

// UnknownPurpose labels calls made without WithPurpose.
const UnknownPurpose = "unknown"

// WithPurpose tags ctx with what the call is for. The label ends up in the
// request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return UnknownPurpose
}
