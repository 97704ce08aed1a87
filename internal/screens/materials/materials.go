// Package materials browses, searches and manages study materials, and
// drafts quizzes from them when an LLM is configured.
package materials

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/quizgen"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

const generateTimeout = 2 * time.Minute

type loadedMsg struct {
	snap ledger.Snapshot
	err  error
}

type viewedMsg struct {
	material ledger.Material
	err      error
}

type removedMsg struct {
	id  string
	err error
}

type generatedMsg struct {
	quiz ledger.Quiz
	err  error
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
	modeConfirmDelete
)

// MaterialsScreen lists the user's materials.
type MaterialsScreen struct {
	deps       *screen.Deps
	snap       ledger.Snapshot
	subjects   []string
	subject    int
	typeFilter int // 0 is all types, otherwise ledger.MaterialTypes[typeFilter-1]
	search     components.TextInput
	selected   int
	mode       mode
	detail     ledger.Material
	generating bool
	loaded     bool
	errMsg     string
	infoMsg    string
}

var _ screen.Screen = (*MaterialsScreen)(nil)
var _ screen.KeyHintProvider = (*MaterialsScreen)(nil)
var _ screen.Refresher = (*MaterialsScreen)(nil)
var _ screen.Capturer = (*MaterialsScreen)(nil)

// New creates the materials screen.
func New(deps *screen.Deps) *MaterialsScreen {
	search := components.NewTextInput("", "Search title or tag", 80)
	search.Blur()
	return &MaterialsScreen{
		deps:     deps,
		subjects: []string{ledger.AllSubjects},
		search:   search,
	}
}

func (s *MaterialsScreen) Init() tea.Cmd {
	return s.load()
}

// Refresh reloads after the add form closes.
func (s *MaterialsScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *MaterialsScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		snap, err := deps.Snapshot(context.Background())
		return loadedMsg{snap: snap, err: err}
	}
}

func (s *MaterialsScreen) Title() string {
	return "Materials"
}

// Capturing reports whether esc should leave search or the detail view
// rather than the screen.
func (s *MaterialsScreen) Capturing() bool {
	return s.mode != modeList
}

func (s *MaterialsScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeSearch:
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}, {Key: "Esc", Description: "Clear"}}
	case modeConfirmDelete:
		return []layout.KeyHint{{Key: "Y", Description: "Delete"}, {Key: "N", Description: "Keep"}}
	case modeDetail:
		hints := []layout.KeyHint{{Key: "D", Description: "Delete"}}
		if s.deps.Generator != nil {
			hints = append(hints, layout.KeyHint{Key: "G", Description: "Generate quiz"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Search"},
		{Key: "Tab", Description: "Subject"},
		{Key: "T", Description: "Type"},
		{Key: "A", Description: "Add"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *MaterialsScreen) filter() ledger.MaterialFilter {
	f := ledger.MaterialFilter{Query: s.search.Value(), Subject: s.subjects[s.subject]}
	if s.typeFilter > 0 {
		f.Type = ledger.MaterialTypes[s.typeFilter-1]
	}
	return f
}

func (s *MaterialsScreen) visible() []ledger.Material {
	return ledger.FilterMaterials(s.snap.Materials, s.filter())
}

func (s *MaterialsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.snap = msg.snap
		s.subjects = append([]string{ledger.AllSubjects}, ledger.Subjects(ledger.Snapshot{Materials: msg.snap.Materials})...)
		s.subject = min(s.subject, len(s.subjects)-1)
		s.clampSelection()
		return s, nil

	case viewedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.detail = msg.material
		s.mode = modeDetail
		return s, s.load()

	case removedMsg:
		s.mode = modeList
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.infoMsg = "Material deleted."
		return s, s.load()

	case generatedMsg:
		s.generating = false
		if msg.err != nil {
			s.errMsg = "Quiz generation failed: " + msg.err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.infoMsg = fmt.Sprintf("Created quiz %q with %d questions.", msg.quiz.Title, len(msg.quiz.Questions))
		return s, s.load()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeSearch {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *MaterialsScreen) clampSelection() {
	if n := len(s.visible()); s.selected >= n {
		s.selected = max(0, n-1)
	}
}

func (s *MaterialsScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.mode {
	case modeSearch:
		switch key {
		case "enter":
			s.search.Blur()
			s.mode = modeList
		case "esc":
			s.search.Reset()
			s.search.Blur()
			s.mode = modeList
		default:
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.selected = 0
			return s, cmd
		}
		s.clampSelection()
		return s, nil

	case modeConfirmDelete:
		switch key {
		case "y", "Y":
			return s, s.removeCmd(s.detail.ID)
		case "n", "N", "esc":
			s.mode = modeDetail
		}
		return s, nil

	case modeDetail:
		switch key {
		case "esc":
			s.mode = modeList
		case "d":
			s.mode = modeConfirmDelete
		case "g":
			if s.deps.Generator != nil && !s.generating {
				s.generating = true
				s.errMsg = ""
				s.infoMsg = ""
				return s, s.generateCmd(s.detail)
			}
		}
		return s, nil
	}

	rows := s.visible()
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
		s.mode = modeSearch
		return s, s.search.Focus()
	case "tab":
		s.subject = components.NextIndex(s.subject, 1, len(s.subjects))
		s.selected = 0
	case "t":
		s.typeFilter = components.NextIndex(s.typeFilter, 1, len(ledger.MaterialTypes)+1)
		s.selected = 0
	case "a":
		return s, router.Open(NewForm(s.deps))
	case "enter":
		if s.selected < len(rows) {
			return s, s.viewCmd(rows[s.selected].ID)
		}
	}
	return s, nil
}

func (s *MaterialsScreen) viewCmd(id string) tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		m, err := deps.Ledger.IncrementMaterialViews(context.Background(), deps.UserID, id)
		return viewedMsg{material: m, err: err}
	}
}

func (s *MaterialsScreen) removeCmd(id string) tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		return removedMsg{id: id, err: deps.Ledger.RemoveMaterial(context.Background(), deps.UserID, id)}
	}
}

// generateCmd drafts a quiz from m and stores it.
func (s *MaterialsScreen) generateCmd(m ledger.Material) tea.Cmd {
	deps := s.deps
	avoid := quizgen.PriorPrompts(s.snap.Quizzes, m.ID)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()

		in, err := deps.Generator.Generate(ctx, quizgen.Input{Material: m, Avoid: avoid})
		if err != nil {
			deps.Logger().Warn("quiz generation failed", zap.String("material", m.ID), zap.Error(err))
			return generatedMsg{err: err}
		}
		q, err := deps.Ledger.CreateQuiz(ctx, deps.UserID, in)
		return generatedMsg{quiz: q, err: err}
	}
}

func (s *MaterialsScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(theme.Muted.Render("Loading materials..."), width, height)
	}

	var body string
	switch s.mode {
	case modeDetail, modeConfirmDelete:
		body = s.renderDetail(width)
	default:
		body = s.renderList(width, height)
	}

	var b strings.Builder
	b.WriteString(body)
	switch {
	case s.errMsg != "":
		b.WriteString("\n\n" + theme.ErrorText.Render(s.errMsg))
	case s.generating:
		b.WriteString("\n\n" + theme.Highlight.Render("Generating quiz..."))
	case s.infoMsg != "":
		b.WriteString("\n\n" + theme.Correct.Render(s.infoMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, b.String())
}

func (s *MaterialsScreen) renderList(width, height int) string {
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

	typeLabel := "all types"
	if s.typeFilter > 0 {
		typeLabel = string(ledger.MaterialTypes[s.typeFilter-1])
	}
	b.WriteString(theme.Muted.Render("Type: " + typeLabel))
	if s.mode == modeSearch || s.search.Value() != "" {
		b.WriteString("\n")
		b.WriteString(s.search.View())
	}
	b.WriteString("\n\n")

	if len(s.snap.Materials) == 0 {
		b.WriteString(theme.Hint.Render("No materials yet. Press A to add one."))
		return b.String()
	}
	rows := s.visible()
	if len(rows) == 0 {
		b.WriteString(theme.Hint.Render("Nothing matches."))
		return b.String()
	}

	titleWidth := max(16, min(40, width-50))
	start, end := components.Window(s.selected, len(rows), max(3, height-10))
	for i := start; i < end; i++ {
		m := rows[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%-*s %-10s %-16s %4d views",
			prefix, titleWidth, components.Truncate(m.Title, titleWidth), m.Type,
			components.Truncate(m.Subject, 16), m.Views)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *MaterialsScreen) renderDetail(width int) string {
	m := s.detail
	var b strings.Builder
	b.WriteString(theme.Title.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("%s · %s · %d views", m.Subject, m.Type, m.Views)))
	b.WriteString("\n")
	if len(m.Tags) > 0 {
		b.WriteString(theme.Hint.Render("#" + strings.Join(m.Tags, " #")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	wrap := lipgloss.NewStyle().Width(min(80, width-8))
	if m.Content != "" {
		b.WriteString(wrap.Render(m.Content))
		b.WriteString("\n")
	}
	if m.FileURL != "" {
		b.WriteString(theme.Highlight.Render(m.FileURL))
		b.WriteString("\n")
	}
	if m.Content == "" && m.FileURL == "" {
		b.WriteString(theme.Hint.Render("This material is empty."))
		b.WriteString("\n")
	}

	if s.mode == modeConfirmDelete {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("Delete this material? (y/n)"))
	}
	return theme.Card.Render(strings.TrimRight(b.String(), "\n"))
}
