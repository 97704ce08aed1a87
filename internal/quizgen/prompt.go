package quizgen

import (
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/llm"
)

const systemPrompt = `You write multiple-choice review quizzes for university students from their own study notes.

Rules:
- Every question must be answerable from the material provided. Do not test outside knowledge.
- Each question has exactly 4 options and exactly one correct option.
- correct_answer is the zero-based index of the correct option.
- Distractors should be plausible and reflect common misunderstandings.
- Keep questions short and self-contained. Do not refer to "the text" or "the notes".
- The explanation says in one or two sentences why the correct option is right.
- Match the requested difficulty: easy recalls facts, medium applies them, hard combines ideas.
- Do not repeat any question from the "already asked" list.`

// QuizSchema is the structured output the LLM must return.
var QuizSchema = &llm.Schema{
	Name:        "study-quiz",
	Description: "A multiple-choice quiz about a study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short quiz title",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One sentence on what the quiz covers",
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 2,
						},
						"correct_answer": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "Zero-based index into options",
						},
						"explanation": map[string]any{"type": "string"},
					},
					"required":             []any{"question", "options", "correct_answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "description", "questions"},
		"additionalProperties": false,
	},
}

func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder
	m := in.Material

	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "Material: %s (%s)\n", m.Title, m.Type)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", in.Questions)

	b.WriteString("\nMaterial content:\n")
	b.WriteString(materialBody(in, cfg.MaxContentChars))

	b.WriteString("\n\nAlready asked:\n")
	b.WriteString(numbered(in.Avoid))
	return b.String()
}

func materialBody(in Input, limit int) string {
	body := strings.TrimSpace(in.Material.Content)
	if body == "" {
		if in.Material.FileURL != "" {
			return fmt.Sprintf("(no text; the material is a file at %s, write questions from the title and tags)", in.Material.FileURL)
		}
		return "(no text; write questions from the title and tags)"
	}
	if limit > 0 && len(body) > limit {
		cut := limit
		// Back up to a rune boundary.
		for cut > 0 && !utf8RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "\n[truncated]"
	}
	return body
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

func numbered(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
