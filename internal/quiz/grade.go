// Package quiz grades quiz attempts and imports quiz documents.
package quiz

import (
	"fmt"
	"math"

	"github.com/blink-new/studytrack/internal/ledger"
)

// PassScore is the lowest passing score, in percent.
const PassScore = 70

// Unanswered marks a question the student skipped.
const Unanswered = -1

// Review is the outcome of one question.
type Review struct {
	Question ledger.Question
	Chosen   int
	Correct  bool
}

// Result is a graded attempt.
type Result struct {
	QuizID  string
	Score   int // percent, rounded
	Correct int
	Total   int
	Passed  bool
	Reviews []Review
}

// Grade scores answers against q. answers[i] is the chosen option index for
// question i; missing or out-of-range entries count as wrong. The quiz is
// not modified.
func Grade(q ledger.Quiz, answers []int) (Result, error) {
	if len(q.Questions) == 0 {
		return Result{}, fmt.Errorf("quiz %q has no questions", q.ID)
	}
	if len(answers) > len(q.Questions) {
		return Result{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(q.Questions))
	}

	res := Result{QuizID: q.ID, Total: len(q.Questions)}
	for i, question := range q.Questions {
		chosen := Unanswered
		if i < len(answers) && answers[i] >= 0 && answers[i] < len(question.Options) {
			chosen = answers[i]
		}
		ok := chosen != Unanswered && chosen == question.CorrectAnswer
		if ok {
			res.Correct++
		}
		res.Reviews = append(res.Reviews, Review{Question: question, Chosen: chosen, Correct: ok})
	}
	res.Score = int(math.Round(float64(res.Correct) / float64(res.Total) * 100))
	res.Passed = res.Score >= PassScore
	return res, nil
}

// Attempt walks a student through a quiz one question at a time.
type Attempt struct {
	quiz    ledger.Quiz
	answers []int
}

// NewAttempt starts an attempt at q.
func NewAttempt(q ledger.Quiz) *Attempt {
	return &Attempt{quiz: q}
}

// Quiz returns the quiz being attempted.
func (a *Attempt) Quiz() ledger.Quiz { return a.quiz }

// Index returns the position of the current question.
func (a *Attempt) Index() int { return len(a.answers) }

// Done reports whether every question has been answered.
func (a *Attempt) Done() bool { return len(a.answers) >= len(a.quiz.Questions) }

// Current returns the question awaiting an answer.
func (a *Attempt) Current() (ledger.Question, bool) {
	if a.Done() {
		return ledger.Question{}, false
	}
	return a.quiz.Questions[len(a.answers)], true
}

// Answer records the chosen option for the current question.
func (a *Attempt) Answer(option int) error {
	q, ok := a.Current()
	if !ok {
		return fmt.Errorf("quiz already finished")
	}
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("option %d out of range [0,%d)", option, len(q.Options))
	}
	a.answers = append(a.answers, option)
	return nil
}

// Restart clears all answers.
func (a *Attempt) Restart() { a.answers = nil }

// Result grades the answers given so far.
func (a *Attempt) Result() (Result, error) {
	return Grade(a.quiz, a.answers)
}
