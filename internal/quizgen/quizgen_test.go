package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/llm"
)

func material() ledger.Material {
	return ledger.Material{
		ID:      "m1",
		Title:   "Derivatives",
		Subject: "Calculus",
		Type:    ledger.MaterialNote,
		Content: "The derivative of x^n is n*x^(n-1). The derivative of a constant is 0.",
		Tags:    []string{"calculus", "derivatives"},
	}
}

func q(prompt string, options ...string) map[string]any {
	return map[string]any{
		"question":       prompt,
		"options":        options,
		"correct_answer": 1,
		"explanation":    "Power rule.",
	}
}

func reply(questions ...map[string]any) llm.MockResponse {
	return llm.MockJSON(map[string]any{
		"title":       "Power Rule Check",
		"description": "Basic derivatives.",
		"questions":   questions,
	})
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(reply(
		q("What is d/dx of x^2?", "x", "2x", "x^2", "2"),
		q("What is d/dx of 7?", "7", "0", "1", "x"),
	))
	gen := New(mock, DefaultConfig())

	quiz, err := gen.Generate(context.Background(), Input{Material: material(), Questions: 2})
	require.NoError(t, err)

	assert.Equal(t, "Power Rule Check", quiz.Title)
	assert.Equal(t, "Calculus", quiz.Subject)
	assert.Equal(t, ledger.DifficultyMedium, quiz.Difficulty)
	assert.Equal(t, 5, quiz.TimeLimitMinutes)
	assert.Equal(t, []string{"calculus", "derivatives", GeneratedTag, "from:m1"}, quiz.Tags)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "What is d/dx of x^2?", quiz.Questions[0].Prompt)
	assert.Equal(t, 1, quiz.Questions[0].CorrectAnswer)
	assert.NoError(t, quiz.Validate())

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, QuizSchema, calls[0].Schema)
	assert.Contains(t, calls[0].Messages[0].Content, "Number of questions: 2")
	assert.Contains(t, calls[0].Messages[0].Content, "derivative of a constant is 0")
}

func TestGenerateTitleFallback(t *testing.T) {
	resp := llm.MockJSON(map[string]any{
		"title":       "  ",
		"description": "",
		"questions":   []any{q("What is d/dx of x?", "0", "1")},
	})
	gen := New(llm.NewMockProvider(resp), DefaultConfig())

	quiz, err := gen.Generate(context.Background(), Input{Material: material(), Questions: 1, Difficulty: ledger.DifficultyEasy})
	require.NoError(t, err)
	assert.Equal(t, "Derivatives Quiz", quiz.Title)
	assert.Equal(t, ledger.DifficultyEasy, quiz.Difficulty)
}

func TestGenerateTimeLimitScales(t *testing.T) {
	var qs []map[string]any
	for i := range 4 {
		qs = append(qs, q(strings.Repeat("?", i+1), "a", "b"))
	}
	cfg := DefaultConfig()
	cfg.MinutesPerQuestion = 3
	gen := New(llm.NewMockProvider(reply(qs...)), cfg)

	quiz, err := gen.Generate(context.Background(), Input{Material: material(), Questions: 4})
	require.NoError(t, err)
	assert.Equal(t, 12, quiz.TimeLimitMinutes)
}

func TestGenerateInputErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no title", Input{Material: ledger.Material{Subject: "x"}}},
		{"too many", Input{Material: material(), Questions: MaxQuestions + 1}},
		{"negative", Input{Material: material(), Questions: -1}},
		{"bad difficulty", Input{Material: material(), Difficulty: "brutal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			_, err := New(mock, DefaultConfig()).Generate(context.Background(), tt.in)
			assert.Error(t, err)
			assert.Zero(t, mock.CallCount())
		})
	}
}

func TestGenerateProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	_, err := New(mock, DefaultConfig()).Generate(context.Background(), Input{Material: material()})

	var unavailable *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestGenerateRejects(t *testing.T) {
	tests := []struct {
		name      string
		resp      llm.MockResponse
		in        Input
		validator string
	}{
		{
			name:      "wrong count",
			resp:      reply(q("One?", "a", "b")),
			in:        Input{Material: material(), Questions: 2},
			validator: "structural",
		},
		{
			name:      "answer out of range",
			resp:      reply(map[string]any{"question": "Q?", "options": []string{"a", "b"}, "correct_answer": 5, "explanation": "e"}),
			in:        Input{Material: material(), Questions: 1},
			validator: "structural",
		},
		{
			name:      "missing explanation",
			resp:      reply(map[string]any{"question": "Q?", "options": []string{"a", "b"}, "correct_answer": 0, "explanation": " "}),
			in:        Input{Material: material(), Questions: 1},
			validator: "structural",
		},
		{
			name:      "repeated question",
			resp:      reply(q("Same?", "a", "b"), q("same? ", "c", "d")),
			in:        Input{Material: material(), Questions: 2},
			validator: "duplicate",
		},
		{
			name:      "repeated option",
			resp:      reply(q("Q?", "Zero", "zero")),
			in:        Input{Material: material(), Questions: 1},
			validator: "duplicate",
		},
		{
			name:      "already asked",
			resp:      reply(q("What is d/dx of 7?", "7", "0")),
			in:        Input{Material: material(), Questions: 1, Avoid: []string{"what is d/dx of 7?"}},
			validator: "duplicate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(llm.NewMockProvider(tt.resp), DefaultConfig()).Generate(context.Background(), tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.validator, verr.Validator)
		})
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	resp := llm.MockJSON(map[string]any{"title": "x", "questions": []any{}})
	_, err := New(llm.NewMockProvider(resp), DefaultConfig()).Generate(context.Background(), Input{Material: material()})

	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestBuildUserMessage(t *testing.T) {
	in := Input{Material: material(), Questions: 3, Difficulty: ledger.DifficultyHard, Avoid: []string{"A?", "B?"}}
	msg := buildUserMessage(in, DefaultConfig())

	assert.Contains(t, msg, "Subject: Calculus")
	assert.Contains(t, msg, "Material: Derivatives (note)")
	assert.Contains(t, msg, "Tags: calculus, derivatives")
	assert.Contains(t, msg, "Difficulty: hard")
	assert.Contains(t, msg, "1. A?\n2. B?")
}

func TestMaterialBody(t *testing.T) {
	m := material()
	m.Content = strings.Repeat("é", 10)

	body := materialBody(Input{Material: m}, 5)
	assert.True(t, strings.HasSuffix(body, "[truncated]"))
	assert.Equal(t, "éé\n[truncated]", body)

	m.Content = ""
	assert.Contains(t, materialBody(Input{Material: m}, 100), "no text")
	m.FileURL = "https://example.com/notes.pdf"
	assert.Contains(t, materialBody(Input{Material: m}, 100), "notes.pdf")

	assert.Equal(t, "None", numbered(nil))
}

func TestPriorPrompts(t *testing.T) {
	quizzes := []ledger.Quiz{
		{Tags: []string{GeneratedTag, SourceTag("m1")}, Questions: []ledger.Question{{Prompt: "What is d/dx x^2?"}}},
		{Tags: []string{GeneratedTag, SourceTag("m2")}, Questions: []ledger.Question{{Prompt: "Other"}}},
		{Tags: []string{"calculus"}, Questions: []ledger.Question{{Prompt: "Hand written"}}},
	}
	assert.Equal(t, []string{"What is d/dx x^2?"}, PriorPrompts(quizzes, "m1"))
	assert.Empty(t, PriorPrompts(quizzes, "m9"))
}
