package materials

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/llm"
	"github.com/blink-new/studytrack/internal/quizgen"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/screen/screentest"
)

func seed(t *testing.T, deps *screen.Deps) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []ledger.MaterialInput{
		{Title: "Cell structure", Subject: "Biology", Type: ledger.MaterialNote, Content: "Mitochondria make ATP.", Tags: []string{"cells"}},
		{Title: "Organic reactions", Subject: "Chemistry", Type: ledger.MaterialFlashcard, Content: "SN1 vs SN2"},
		{Title: "Photosynthesis lecture", Subject: "Biology", Type: ledger.MaterialVideo, FileURL: "https://example.edu/photo.mp4"},
	} {
		if _, err := deps.Ledger.CreateMaterial(ctx, deps.UserID, in); err != nil {
			t.Fatalf("CreateMaterial: %v", err)
		}
	}
}

func loaded(t *testing.T, deps *screen.Deps) *MaterialsScreen {
	t.Helper()
	s := New(deps)
	s.Update(s.Init()())
	return s
}

func run(s *MaterialsScreen, cmd tea.Cmd) {
	for _, m := range screentest.Msgs(cmd) {
		_, next := s.Update(m)
		run(s, next)
	}
}

func TestMaterials_Title(t *testing.T) {
	s := New(screentest.NewDeps(t))
	if s.Title() != "Materials" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestMaterials_EmptyState(t *testing.T) {
	s := loaded(t, screentest.NewDeps(t))
	if !strings.Contains(s.View(100, 30), "No materials yet") {
		t.Error("expected empty state")
	}
}

func TestMaterials_SubjectAndTypeFilters(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	if got := len(s.visible()); got != 3 {
		t.Fatalf("all rows = %d, want 3", got)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab}) // Biology
	if got := len(s.visible()); got != 2 {
		t.Errorf("Biology rows = %d, want 2", got)
	}
	s.Update(screentest.Key('t')) // note
	if got := len(s.visible()); got != 1 {
		t.Errorf("Biology notes = %d, want 1", got)
	}
}

func TestMaterials_Search(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	s.Update(screentest.Key('/'))
	if !s.Capturing() {
		t.Fatal("search should capture esc")
	}
	screentest.Type(s, "cells")
	rows := s.visible()
	if len(rows) != 1 || rows[0].Title != "Cell structure" {
		t.Errorf("search rows = %v", rows)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.Capturing() {
		t.Error("esc should leave search")
	}
	if got := len(s.visible()); got != 3 {
		t.Errorf("cleared search rows = %d, want 3", got)
	}
}

func TestMaterials_OpenCountsView(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)

	if s.mode != modeDetail {
		t.Fatalf("mode = %v, want detail", s.mode)
	}
	if s.detail.Views != 1 {
		t.Errorf("views = %d, want 1", s.detail.Views)
	}
	if !strings.Contains(s.View(120, 40), s.detail.Title) {
		t.Error("detail should show the title")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.mode != modeList {
		t.Errorf("esc in detail should return to the list")
	}
}

func TestMaterials_DeleteConfirm(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)
	s.Update(screentest.Key('d'))
	s.Update(screentest.Key('n'))
	if s.mode != modeDetail {
		t.Fatalf("n should keep the material")
	}
	s.Update(screentest.Key('d'))
	_, cmd = s.Update(screentest.Key('y'))
	run(s, cmd)

	if got := len(s.snap.Materials); got != 2 {
		t.Errorf("materials after delete = %d, want 2", got)
	}
	if s.mode != modeList {
		t.Errorf("mode = %v, want list", s.mode)
	}
}

func TestMaterials_GenerateQuiz(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)

	questions := make([]map[string]any, quizgen.DefaultQuestions)
	for i := range questions {
		questions[i] = map[string]any{
			"question":       fmt.Sprintf("Question %d about cells?", i+1),
			"options":        []string{"a", "b", "c", "d"},
			"correct_answer": i % 4,
			"explanation":    "Because.",
		}
	}
	mock := llm.NewMockProvider(llm.MockJSON(map[string]any{
		"title": "Cells Check", "description": "", "questions": questions,
	}))
	deps.Generator = quizgen.New(mock, quizgen.DefaultConfig())
	s := loaded(t, deps)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)
	_, cmd = s.Update(screentest.Key('g'))
	if !s.generating {
		t.Fatal("g should start generation")
	}
	run(s, cmd)

	if s.errMsg != "" {
		t.Fatalf("errMsg = %q", s.errMsg)
	}
	if len(s.snap.Quizzes) != 1 || s.snap.Quizzes[0].Title != "Cells Check" {
		t.Fatalf("quizzes = %v", s.snap.Quizzes)
	}
	if mock.CallCount() != 1 {
		t.Errorf("LLM calls = %d, want 1", mock.CallCount())
	}
}

func TestMaterials_GenerateDisabledWithoutLLM(t *testing.T) {
	deps := screentest.NewDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)
	_, cmd = s.Update(screentest.Key('g'))
	if cmd != nil || s.generating {
		t.Error("g should do nothing without a generator")
	}
}

func TestMaterials_AddOpensForm(t *testing.T) {
	s := loaded(t, screentest.NewDeps(t))
	_, cmd := s.Update(screentest.Key('a'))
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*FormScreen); !ok {
		t.Errorf("pushed %T, want *FormScreen", msg.Screen)
	}
}

func TestForm_SavesMaterial(t *testing.T) {
	deps := screentest.NewDeps(t)
	f := NewForm(deps)

	var sc screen.Screen = f
	sc = screentest.Type(sc, "Krebs cycle")
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	sc = screentest.Type(sc, "Biology")
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyRight}) // flashcard
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	sc = screentest.Type(sc, "Citrate first")
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	sc, _ = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	sc = screentest.Type(sc, "exam, cells")
	sc, cmd := sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	msgs := screentest.Msgs(cmd)
	if len(msgs) != 1 {
		t.Fatalf("save produced %d messages", len(msgs))
	}
	_, cmd = sc.Update(msgs[0])
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("a saved form should close")
	}

	snap, err := deps.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Materials) != 1 {
		t.Fatalf("materials = %d, want 1", len(snap.Materials))
	}
	m := snap.Materials[0]
	if m.Title != "Krebs cycle" || m.Type != ledger.MaterialFlashcard || len(m.Tags) != 2 {
		t.Errorf("material = %+v", m)
	}
}

func TestForm_ValidationKeepsFormOpen(t *testing.T) {
	f := NewForm(screentest.NewDeps(t))
	var sc screen.Screen = f
	var cmd tea.Cmd
	for i := 0; i < 6; i++ {
		sc, cmd = sc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	}
	msgs := screentest.Msgs(cmd)
	if len(msgs) != 1 {
		t.Fatalf("save produced %d messages", len(msgs))
	}
	_, cmd = sc.Update(msgs[0])
	if cmd != nil {
		t.Error("invalid input should not close the form")
	}
	if f.errMsg == "" {
		t.Error("expected a validation message")
	}
}
