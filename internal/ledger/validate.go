package ledger

import (
	"fmt"
	"strings"
)

// MaterialInput holds the user-editable fields of a material.
type MaterialInput struct {
	Title    string
	Subject  string
	Type     MaterialType
	Content  string
	FileURL  string
	Tags     []string
	IsPublic bool
}

// Validate checks required fields.
func (in MaterialInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return invalid("subject", "must not be empty")
	}
	if !in.Type.Valid() {
		return invalid("materialType", "%q is not one of note, flashcard, document, video", in.Type)
	}
	return nil
}

// QuizInput holds the user-editable fields of a quiz.
type QuizInput struct {
	Title            string
	Subject          string
	Description      string
	Difficulty       Difficulty
	TimeLimitMinutes int
	IsPublic         bool
	Tags             []string
	Questions        []Question
}

// Validate checks required fields and every question.
func (in QuizInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return invalid("subject", "must not be empty")
	}
	if !in.Difficulty.Valid() {
		return invalid("difficulty", "%q is not one of easy, medium, hard", in.Difficulty)
	}
	if in.TimeLimitMinutes <= 0 {
		return invalid("timeLimit", "must be positive")
	}
	if len(in.Questions) == 0 {
		return invalid("questions", "a quiz needs at least one question")
	}
	for i, q := range in.Questions {
		if ve := validateQuestion(q); ve != nil {
			return invalid(fmt.Sprintf("questions[%d].%s", i, ve.Field), "%s", ve.Message)
		}
	}
	return nil
}

// ValidateQuestion checks that q has a prompt, at least two non-empty
// options and a correct answer index within range.
func ValidateQuestion(q Question) error {
	if ve := validateQuestion(q); ve != nil {
		return ve
	}
	return nil
}

func validateQuestion(q Question) *ValidationError {
	if strings.TrimSpace(q.Prompt) == "" {
		return invalid("question", "must not be empty")
	}
	if len(q.Options) < 2 {
		return invalid("options", "need at least 2, got %d", len(q.Options))
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return invalid("options", "option %d is empty", i)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return invalid("correctAnswer", "index %d out of range [0,%d)", q.CorrectAnswer, len(q.Options))
	}
	return nil
}

func validateSession(s Session) error {
	if strings.TrimSpace(s.Subject) == "" {
		return invalid("subject", "must not be empty")
	}
	if s.DurationMinutes <= 0 {
		return invalid("durationMinutes", "must be positive, got %d", s.DurationMinutes)
	}
	if !s.SessionDate.Valid() {
		return invalid("sessionDate", "%q is not a YYYY-MM-DD date", s.SessionDate)
	}
	return nil
}

// ProfileEdit carries the user-editable profile fields. Nil fields are left
// unchanged.
type ProfileEdit struct {
	DisplayName *string
	University  *string
	Major       *string
	YearOfStudy *int
	Bio         *string
}

// Validate checks edited fields.
func (e ProfileEdit) Validate() error {
	if e.DisplayName != nil && strings.TrimSpace(*e.DisplayName) == "" {
		return invalid("displayName", "must not be empty")
	}
	if e.YearOfStudy != nil && (*e.YearOfStudy < 0 || *e.YearOfStudy > 10) {
		return invalid("yearOfStudy", "must be between 0 and 10")
	}
	return nil
}

func (e ProfileEdit) apply(p *Profile) {
	if e.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*e.DisplayName)
	}
	if e.University != nil {
		p.University = strings.TrimSpace(*e.University)
	}
	if e.Major != nil {
		p.Major = strings.TrimSpace(*e.Major)
	}
	if e.YearOfStudy != nil {
		p.YearOfStudy = *e.YearOfStudy
	}
	if e.Bio != nil {
		p.Bio = strings.TrimSpace(*e.Bio)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma-separated tag list.
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}
