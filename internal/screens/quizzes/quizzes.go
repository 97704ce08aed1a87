// Package quizzes lists the user's quizzes alongside the sample library
// and runs quiz attempts.
package quizzes

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type loadedMsg struct {
	quizzes []ledger.Quiz
	err     error
}

type removedMsg struct {
	err error
}

// row is a listed quiz. Samples come from the content library and cannot
// be deleted.
type row struct {
	quiz   ledger.Quiz
	sample bool
}

// QuizzesScreen lists quizzes.
type QuizzesScreen struct {
	deps       *screen.Deps
	own        []ledger.Quiz
	samples    []ledger.Quiz
	subjects   []string
	subject    int
	difficulty int // 0 is any, otherwise ledger.Difficulties[difficulty-1]
	search     components.TextInput
	searching  bool
	confirm    bool
	selected   int
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*QuizzesScreen)(nil)
var _ screen.KeyHintProvider = (*QuizzesScreen)(nil)
var _ screen.Refresher = (*QuizzesScreen)(nil)
var _ screen.Capturer = (*QuizzesScreen)(nil)

// New creates the quiz list.
func New(deps *screen.Deps) *QuizzesScreen {
	search := components.NewTextInput("", "Search title, description or tag", 80)
	search.Blur()
	return &QuizzesScreen{
		deps:     deps,
		samples:  deps.Content.SampleQuizzes(),
		subjects: []string{ledger.AllSubjects},
		search:   search,
	}
}

func (s *QuizzesScreen) Init() tea.Cmd {
	return s.load()
}

// Refresh reloads the list after an attempt.
func (s *QuizzesScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *QuizzesScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		snap, err := deps.Snapshot(context.Background())
		return loadedMsg{quizzes: snap.Quizzes, err: err}
	}
}

func (s *QuizzesScreen) Title() string {
	return "Quizzes"
}

// Capturing reports whether esc belongs to the search box or the delete
// prompt.
func (s *QuizzesScreen) Capturing() bool {
	return s.searching || s.confirm
}

func (s *QuizzesScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}, {Key: "Esc", Description: "Clear"}}
	}
	if s.confirm {
		return []layout.KeyHint{{Key: "Y", Description: "Delete"}, {Key: "N", Description: "Keep"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Take"},
		{Key: "/", Description: "Search"},
		{Key: "Tab", Description: "Subject"},
		{Key: "F", Description: "Difficulty"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuizzesScreen) filter() ledger.QuizFilter {
	f := ledger.QuizFilter{Query: s.search.Value(), Subject: s.subjects[s.subject]}
	if s.difficulty > 0 {
		f.Difficulty = ledger.Difficulties[s.difficulty-1]
	}
	return f
}

// rows lists the user's quizzes first, then matching samples.
func (s *QuizzesScreen) rows() []row {
	f := s.filter()
	var out []row
	for _, q := range ledger.FilterQuizzes(s.own, f) {
		out = append(out, row{quiz: q})
	}
	for _, q := range ledger.FilterQuizzes(s.samples, f) {
		out = append(out, row{quiz: q, sample: true})
	}
	return out
}

func (s *QuizzesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.own = msg.quizzes
		s.subjects = append([]string{ledger.AllSubjects},
			ledger.Subjects(ledger.Snapshot{Quizzes: append(append([]ledger.Quiz(nil), s.own...), s.samples...)})...)
		s.subject = min(s.subject, len(s.subjects)-1)
		s.clampSelection()
		return s, nil

	case removedMsg:
		s.confirm = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.searching {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizzesScreen) clampSelection() {
	if n := len(s.rows()); s.selected >= n {
		s.selected = max(0, n-1)
	}
}

func (s *QuizzesScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.searching {
		switch key {
		case "enter":
			s.search.Blur()
			s.searching = false
		case "esc":
			s.search.Reset()
			s.search.Blur()
			s.searching = false
		default:
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.selected = 0
			return s, cmd
		}
		s.clampSelection()
		return s, nil
	}

	rows := s.rows()
	if s.confirm {
		switch key {
		case "y", "Y":
			id := rows[s.selected].quiz.ID
			deps := s.deps
			return s, func() tea.Msg {
				return removedMsg{err: deps.Ledger.RemoveQuiz(context.Background(), deps.UserID, id)}
			}
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		return s, router.Back
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(rows)-1 {
			s.selected++
		}
	case "/":
		s.searching = true
		return s, s.search.Focus()
	case "tab":
		s.subject = components.NextIndex(s.subject, 1, len(s.subjects))
		s.selected = 0
	case "f":
		s.difficulty = components.NextIndex(s.difficulty, 1, len(ledger.Difficulties)+1)
		s.selected = 0
	case "d":
		if s.selected < len(rows) && !rows[s.selected].sample {
			s.confirm = true
		}
	case "enter":
		if s.selected < len(rows) {
			return s, router.Open(NewTake(s.deps, rows[s.selected].quiz))
		}
	}
	return s, nil
}

func (s *QuizzesScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(theme.Muted.Render("Loading quizzes..."), width, height)
	}

	var b strings.Builder
	labels := make([]string, len(s.subjects))
	for i, subj := range s.subjects {
		if subj == ledger.AllSubjects {
			subj = "All"
		}
		labels[i] = components.Truncate(subj, 16)
	}
	b.WriteString(components.Tabs(labels, s.subject))
	b.WriteString("\n")
	diff := "any difficulty"
	if s.difficulty > 0 {
		diff = string(ledger.Difficulties[s.difficulty-1])
	}
	b.WriteString(theme.Muted.Render("Difficulty: " + diff))
	if s.searching || s.search.Value() != "" {
		b.WriteString("\n")
		b.WriteString(s.search.View())
	}
	b.WriteString("\n\n")

	rows := s.rows()
	if len(rows) == 0 {
		b.WriteString(theme.Hint.Render("No quizzes match."))
	}

	titleWidth := max(16, min(36, width-56))
	start, end := components.Window(s.selected, len(rows), max(3, height-10))
	for i := start; i < end; i++ {
		r := rows[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		origin := "mine"
		if r.sample {
			origin = "sample"
		}
		line := fmt.Sprintf("%s%-*s %-14s %-6s %2dq %3d min  %s",
			prefix, titleWidth, components.Truncate(r.quiz.Title, titleWidth),
			components.Truncate(r.quiz.Subject, 14), r.quiz.Difficulty,
			len(r.quiz.Questions), r.quiz.TimeLimitMinutes, origin)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if s.confirm {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("Delete this quiz? (y/n)"))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.TrimRight(b.String(), "\n"))
}
