package quizzes

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/quiz"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

// countdownMsg is one second of the time limit. gen ties it to the run
// that scheduled it so a restart drops stale ticks.
type countdownMsg struct {
	gen int
}

// TakeScreen runs one quiz attempt: a question at a time, each revealed
// after answering, then a graded review. The attempt ends early when the
// time limit runs out.
type TakeScreen struct {
	deps      *screen.Deps
	attempt   *quiz.Attempt
	choice    components.MultiChoice
	revealed  bool
	remaining time.Duration
	gen       int
	result    *quiz.Result
	timedOut  bool
	reviewTop int
	errMsg    string
}

var _ screen.Screen = (*TakeScreen)(nil)
var _ screen.KeyHintProvider = (*TakeScreen)(nil)

// NewTake starts an attempt at q.
func NewTake(deps *screen.Deps, q ledger.Quiz) *TakeScreen {
	s := &TakeScreen{deps: deps, attempt: quiz.NewAttempt(q)}
	s.reset()
	return s
}

func (s *TakeScreen) reset() {
	s.attempt.Restart()
	s.result = nil
	s.timedOut = false
	s.revealed = false
	s.reviewTop = 0
	s.remaining = time.Duration(s.attempt.Quiz().TimeLimitMinutes) * time.Minute
	s.gen++
	s.nextChoice()
}

func (s *TakeScreen) nextChoice() {
	q, ok := s.attempt.Current()
	if !ok {
		return
	}
	s.choice = components.NewMultiChoice(q.Prompt, q.Options)
	s.revealed = false
}

func (s *TakeScreen) Init() tea.Cmd {
	return s.countdown()
}

func (s *TakeScreen) countdown() tea.Cmd {
	gen := s.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{gen: gen}
	})
}

func (s *TakeScreen) Title() string {
	return s.attempt.Quiz().Title
}

func (s *TakeScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.result != nil:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "R", Description: "Retry"},
			{Key: "Enter", Description: "Done"},
		}
	case s.revealed:
		return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Esc", Description: "Quit quiz"}}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "1-9", Description: "Pick"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Quit quiz"},
		}
	}
}

// Result returns the graded attempt once finished.
func (s *TakeScreen) Result() (quiz.Result, bool) {
	if s.result == nil {
		return quiz.Result{}, false
	}
	return *s.result, true
}

// Remaining returns the time left on the clock.
func (s *TakeScreen) Remaining() time.Duration {
	return s.remaining
}

func (s *TakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case countdownMsg:
		if msg.gen != s.gen || s.result != nil {
			return s, nil
		}
		s.remaining -= time.Second
		if s.remaining <= 0 {
			s.remaining = 0
			s.timedOut = true
			s.finish()
			return s, nil
		}
		return s, s.countdown()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *TakeScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.result != nil {
		switch key {
		case "enter", "esc":
			return s, router.Back
		case "r":
			s.reset()
			return s, s.countdown()
		case "up", "k":
			s.reviewTop = max(0, s.reviewTop-1)
		case "down", "j":
			s.reviewTop = min(len(s.result.Reviews)-1, s.reviewTop+1)
		}
		return s, nil
	}

	if key == "esc" {
		return s, router.Back
	}

	if s.revealed {
		if key == "enter" || key == "space" {
			if s.attempt.Done() {
				s.finish()
			} else {
				s.nextChoice()
			}
		}
		return s, nil
	}

	s.choice, _ = s.choice.Update(msg)
	if s.choice.Submitted {
		q, _ := s.attempt.Current()
		if err := s.attempt.Answer(s.choice.Chosen); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		s.choice.Reveal(q.CorrectAnswer)
		s.revealed = true
	}
	return s, nil
}

func (s *TakeScreen) finish() {
	res, err := s.attempt.Result()
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	s.result = &res
}

func (s *TakeScreen) View(width, height int) string {
	if s.result != nil {
		return s.renderResult(width, height)
	}

	q := s.attempt.Quiz()
	total := len(q.Questions)
	idx := s.attempt.Index()
	if s.revealed {
		idx--
	}

	var b strings.Builder
	clock := theme.Muted
	if s.remaining < time.Minute {
		clock = theme.Warning
	}
	b.WriteString(theme.Heading.Render(fmt.Sprintf("Question %d of %d", idx+1, total)))
	b.WriteString("   ")
	b.WriteString(clock.Render(formatRemaining(s.remaining)))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", float64(idx)/float64(max(total, 1)), false, 40).View())
	b.WriteString("\n\n")
	b.WriteString(s.choice.View())

	if s.revealed {
		asked := q.Questions[idx]
		b.WriteString("\n")
		if s.choice.Chosen == asked.CorrectAnswer {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Not quite. The answer is %s.", components.OptionLabel(asked.CorrectAnswer))))
		}
		if asked.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(theme.Muted.Render(asked.Explanation))
		}
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	card := theme.Card.Width(min(90, width-4)).Render(b.String())
	return layout.Centered(card, width, height)
}

func (s *TakeScreen) renderResult(width, height int) string {
	res := *s.result
	var b strings.Builder

	verdict := theme.Correct.Render("Passed!")
	if !res.Passed {
		verdict = theme.Incorrect.Render(fmt.Sprintf("Not passed. %d%% needed.", quiz.PassScore))
	}
	b.WriteString(theme.Title.Render(fmt.Sprintf("Score: %d%%", res.Score)))
	b.WriteString("  ")
	b.WriteString(verdict)
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("%d of %d correct", res.Correct, res.Total)))
	if s.timedOut {
		b.WriteString(theme.Warning.Render("  · time ran out"))
	}
	b.WriteString("\n\n")

	visible := max(1, (height-10)/3)
	end := min(len(res.Reviews), s.reviewTop+visible)
	for i := s.reviewTop; i < end; i++ {
		r := res.Reviews[i]
		mark := theme.Correct.Render("✓")
		if !r.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, r.Question.Prompt))
		answer := fmt.Sprintf("   Answer: %s) %s", components.OptionLabel(r.Question.CorrectAnswer), r.Question.Options[r.Question.CorrectAnswer])
		if !r.Correct {
			if r.Chosen == quiz.Unanswered {
				answer += "  (unanswered)"
			} else {
				answer += fmt.Sprintf("  (you chose %s)", components.OptionLabel(r.Chosen))
			}
		}
		b.WriteString(theme.Muted.Render(answer))
		b.WriteString("\n")
	}

	card := theme.Card.Width(min(90, width-4)).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func formatRemaining(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d left", secs/60, secs%60)
}
