package ledger

import (
	"slices"
	"strings"
)

// AllSubjects matches every subject in a filter.
const AllSubjects = "all"

// MaterialFilter narrows a material list. Zero fields match everything.
type MaterialFilter struct {
	Query   string // case-insensitive match on title or any tag
	Subject string
	Type    MaterialType
}

// FilterMaterials returns the materials matching f, preserving order.
func FilterMaterials(ms []Material, f MaterialFilter) []Material {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	var out []Material
	for _, m := range ms {
		if !subjectMatches(m.Subject, f.Subject) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if q != "" && !textMatches(q, m.Title, m.Tags) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// QuizFilter narrows a quiz list. Zero fields match everything.
type QuizFilter struct {
	Query      string // case-insensitive match on title, description or any tag
	Subject    string
	Difficulty Difficulty
}

// FilterQuizzes returns the quizzes matching f, preserving order.
func FilterQuizzes(qs []Quiz, f QuizFilter) []Quiz {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	var out []Quiz
	for _, qz := range qs {
		if !subjectMatches(qz.Subject, f.Subject) {
			continue
		}
		if f.Difficulty != "" && qz.Difficulty != f.Difficulty {
			continue
		}
		if q != "" && !textMatches(q, qz.Title, qz.Tags) &&
			!strings.Contains(strings.ToLower(qz.Description), q) {
			continue
		}
		out = append(out, qz)
	}
	return out
}

// Subjects returns the distinct subjects used by sessions, materials and
// quizzes, sorted.
func Subjects(snap Snapshot) []string {
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" {
			seen[s] = true
		}
	}
	for _, s := range snap.Sessions {
		add(s.Subject)
	}
	for _, m := range snap.Materials {
		add(m.Subject)
	}
	for _, q := range snap.Quizzes {
		add(q.Subject)
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func subjectMatches(subject, want string) bool {
	return want == "" || want == AllSubjects || strings.EqualFold(subject, want)
}

func textMatches(q, title string, tags []string) bool {
	if strings.Contains(strings.ToLower(title), q) {
		return true
	}
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
