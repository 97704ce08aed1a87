// Package quizgen drafts multiple-choice quizzes from a study material
// with an LLM.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/llm"
)

// Purpose tags quiz generation calls in the LLM request log.
const Purpose = "quiz-gen"

// GeneratedTag is added to the tags of every generated quiz.
const GeneratedTag = "generated"

const sourceTagPrefix = "from:"

// Limits on the number of questions per request.
const (
	DefaultQuestions = 5
	MaxQuestions     = 20
)

// Config controls a Generator.
type Config struct {
	Validators  []Validator
	MaxTokens   int
	Temperature float64
	// MaxContentChars truncates the material body sent in the prompt.
	MaxContentChars int
	// MinutesPerQuestion sizes the quiz time limit.
	MinutesPerQuestion int
}

// DefaultConfig returns the standard validators and limits.
func DefaultConfig() Config {
	return Config{
		Validators:         []Validator{&StructuralValidator{}, &DuplicateValidator{}},
		MaxTokens:          2048,
		Temperature:        0.4,
		MaxContentChars:    6000,
		MinutesPerQuestion: 2,
	}
}

// Input describes the quiz to draft.
type Input struct {
	Material   ledger.Material
	Questions  int               // 0 means DefaultQuestions
	Difficulty ledger.Difficulty // empty means medium
	// Avoid lists question prompts that must not be repeated, typically
	// those of quizzes already made from the same material.
	Avoid []string
}

func (in Input) normalized() (Input, error) {
	if strings.TrimSpace(in.Material.Title) == "" {
		return in, fmt.Errorf("material has no title")
	}
	if in.Questions == 0 {
		in.Questions = DefaultQuestions
	}
	if in.Questions < 1 || in.Questions > MaxQuestions {
		return in, fmt.Errorf("questions must be between 1 and %d, got %d", MaxQuestions, in.Questions)
	}
	if in.Difficulty == "" {
		in.Difficulty = ledger.DifficultyMedium
	}
	if !in.Difficulty.Valid() {
		return in, fmt.Errorf("unknown difficulty %q", in.Difficulty)
	}
	return in, nil
}

// Generator drafts quizzes.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New returns a Generator backed by provider.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

type questionOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type quizOutput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []questionOutput `json:"questions"`
}

// Generate asks the LLM for a quiz about in.Material. The result passes
// ledger validation and every configured validator; it is not stored.
func (g *Generator) Generate(ctx context.Context, in Input) (ledger.QuizInput, error) {
	in, err := in.normalized()
	if err != nil {
		return ledger.QuizInput{}, err
	}
	ctx = llm.WithPurpose(ctx, Purpose)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(in, g.config)),
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return ledger.QuizInput{}, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw quizOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return ledger.QuizInput{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	quiz := g.assemble(raw, in)
	for _, v := range g.config.Validators {
		if verr := v.Validate(&quiz, in); verr != nil {
			return ledger.QuizInput{}, verr
		}
	}
	if err := quiz.Validate(); err != nil {
		return ledger.QuizInput{}, err
	}
	return quiz, nil
}

func (g *Generator) assemble(raw quizOutput, in Input) ledger.QuizInput {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = in.Material.Title + " Quiz"
	}
	perQuestion := max(g.config.MinutesPerQuestion, 1)

	quiz := ledger.QuizInput{
		Title:            title,
		Subject:          in.Material.Subject,
		Description:      strings.TrimSpace(raw.Description),
		Difficulty:       in.Difficulty,
		TimeLimitMinutes: max(5, perQuestion*len(raw.Questions)),
		Tags:             appendTag(in.Material.Tags, GeneratedTag),
	}
	if in.Material.ID != "" {
		quiz.Tags = appendTag(quiz.Tags, SourceTag(in.Material.ID))
	}
	for _, q := range raw.Questions {
		opts := make([]string, len(q.Options))
		for i, o := range q.Options {
			opts[i] = strings.TrimSpace(o)
		}
		quiz.Questions = append(quiz.Questions, ledger.Question{
			Prompt:        strings.TrimSpace(q.Question),
			Options:       opts,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		})
	}
	return quiz
}

// SourceTag marks a generated quiz with the material it was drawn from.
func SourceTag(materialID string) string {
	return sourceTagPrefix + materialID
}

// PriorPrompts returns the question prompts of quizzes already generated
// from materialID, for use as Input.Avoid.
func PriorPrompts(quizzes []ledger.Quiz, materialID string) []string {
	tag := SourceTag(materialID)
	var out []string
	for _, q := range quizzes {
		if !slices.Contains(q.Tags, tag) {
			continue
		}
		for _, qq := range q.Questions {
			out = append(out, qq.Prompt)
		}
	}
	return out
}

func appendTag(tags []string, tag string) []string {
	out := slices.Clone(tags)
	if !slices.Contains(out, tag) {
		out = append(out, tag)
	}
	return out
}
