package quizgen

import (
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/ledger"
)

// Validator checks a drafted quiz.
type Validator interface {
	Name() string
	Validate(q *ledger.QuizInput, in Input) *ValidationError
}

// ValidationError says why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// Length limits for generated text.
const (
	MaxPromptLen      = 500
	MaxOptionLen      = 200
	MaxExplanationLen = 1000
)

// StructuralValidator checks counts, lengths and answer indexes.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *ledger.QuizInput, in Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}
	if len(q.Questions) != in.Questions {
		return fail("asked for %d questions, got %d", in.Questions, len(q.Questions))
	}
	for i, qq := range q.Questions {
		if err := ledger.ValidateQuestion(qq); err != nil {
			return fail("question %d: %v", i+1, err)
		}
		if len(qq.Prompt) > MaxPromptLen {
			return fail("question %d exceeds %d characters", i+1, MaxPromptLen)
		}
		for j, o := range qq.Options {
			if len(o) > MaxOptionLen {
				return fail("question %d option %d exceeds %d characters", i+1, j+1, MaxOptionLen)
			}
		}
		if qq.Explanation == "" {
			return fail("question %d has no explanation", i+1)
		}
		if len(qq.Explanation) > MaxExplanationLen {
			return fail("question %d explanation exceeds %d characters", i+1, MaxExplanationLen)
		}
	}
	return nil
}

// DuplicateValidator rejects repeated questions and repeated options.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q *ledger.QuizInput, in Input) *ValidationError {
	seen := make(map[string]bool)
	for _, a := range in.Avoid {
		seen[normalize(a)] = true
	}
	for i, qq := range q.Questions {
		key := normalize(qq.Prompt)
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question %d repeats %q", i+1, qq.Prompt)}
		}
		seen[key] = true

		opts := make(map[string]bool, len(qq.Options))
		for _, o := range qq.Options {
			k := normalize(o)
			if opts[k] {
				return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question %d lists option %q twice", i+1, o)}
			}
			opts[k] = true
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
