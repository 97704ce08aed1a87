package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/blink-new/studytrack/internal/ledger"
)

// DocumentSchema is the JSON Schema a quiz document must satisfy.
var DocumentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string", "minLength": 1},
		"subject":     map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"easy", "medium", "hard"},
		},
		"timeLimit": map[string]any{"type": "integer", "minimum": 1},
		"isPublic":  map[string]any{"type": "boolean"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "minLength": 1},
					"options": map[string]any{
						"type":     "array",
						"minItems": 2,
						"items":    map[string]any{"type": "string", "minLength": 1},
					},
					"correctAnswer": map[string]any{"type": "integer", "minimum": 0},
					"explanation":   map[string]any{"type": "string"},
				},
				"required":             []any{"question", "options", "correctAnswer"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"title", "subject", "difficulty", "questions"},
	"additionalProperties": false,
}

// DefaultTimeLimit applies when a document omits timeLimit.
const DefaultTimeLimit = 30

const documentURL = "schema://quiz-document.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(DocumentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(documentURL)
	})
	return compiled, compileErr
}

type document struct {
	Title       string            `json:"title"`
	Subject     string            `json:"subject"`
	Description string            `json:"description"`
	Difficulty  ledger.Difficulty `json:"difficulty"`
	TimeLimit   int               `json:"timeLimit"`
	IsPublic    bool              `json:"isPublic"`
	Tags        []string          `json:"tags"`
	Questions   []struct {
		Prompt        string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
	} `json:"questions"`
}

// ParseDocument reads a quiz document in JSON or YAML, checks it against
// DocumentSchema and returns it as ledger input. The result has also passed
// ledger validation.
func ParseDocument(data []byte) (ledger.QuizInput, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return ledger.QuizInput{}, fmt.Errorf("parse quiz document: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(tree)
	if err != nil {
		return ledger.QuizInput{}, fmt.Errorf("parse quiz document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return ledger.QuizInput{}, fmt.Errorf("parse quiz document: %w", err)
	}

	sch, err := documentSchema()
	if err != nil {
		return ledger.QuizInput{}, fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return ledger.QuizInput{}, fmt.Errorf("quiz document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ledger.QuizInput{}, fmt.Errorf("decode quiz document: %w", err)
	}

	in := ledger.QuizInput{
		Title:            doc.Title,
		Subject:          doc.Subject,
		Description:      doc.Description,
		Difficulty:       doc.Difficulty,
		TimeLimitMinutes: doc.TimeLimit,
		IsPublic:         doc.IsPublic,
		Tags:             doc.Tags,
	}
	if in.TimeLimitMinutes == 0 {
		in.TimeLimitMinutes = DefaultTimeLimit
	}
	for _, q := range doc.Questions {
		in.Questions = append(in.Questions, ledger.Question{
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	if err := in.Validate(); err != nil {
		return ledger.QuizInput{}, err
	}
	return in, nil
}

// Export renders q as an indented JSON document that ParseDocument accepts.
func Export(q ledger.Quiz) ([]byte, error) {
	doc := map[string]any{
		"title":      q.Title,
		"subject":    q.Subject,
		"difficulty": string(q.Difficulty),
		"timeLimit":  q.TimeLimitMinutes,
		"isPublic":   q.IsPublic,
	}
	if q.Description != "" {
		doc["description"] = q.Description
	}
	if len(q.Tags) > 0 {
		doc["tags"] = q.Tags
	}
	questions := make([]map[string]any, 0, len(q.Questions))
	for _, qq := range q.Questions {
		m := map[string]any{
			"question":      qq.Prompt,
			"options":       qq.Options,
			"correctAnswer": qq.CorrectAnswer,
		}
		if qq.Explanation != "" {
			m["explanation"] = qq.Explanation
		}
		questions = append(questions, m)
	}
	doc["questions"] = questions
	return json.MarshalIndent(doc, "", "  ")
}
