package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blink-new/studytrack/internal/ledger"
)

func sampleQuiz() ledger.Quiz {
	return ledger.Quiz{
		ID:         "q1",
		Title:      "Calculus Fundamentals",
		Subject:    "Mathematics",
		Difficulty: ledger.DifficultyMedium,
		Attempts:   4,
		Questions: []ledger.Question{
			{ID: "1", Prompt: "d/dx x²", Options: []string{"2x", "x", "2", "x²"}, CorrectAnswer: 0},
			{ID: "2", Prompt: "∫2x dx", Options: []string{"x²", "x² + C", "2", "2x + C"}, CorrectAnswer: 1},
			{ID: "3", Prompt: "d/dx sin x", Options: []string{"cos x", "-cos x"}, CorrectAnswer: 0},
		},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
		score   int
		correct int
		passed  bool
	}{
		{"all correct", []int{0, 1, 0}, 100, 3, true},
		{"two of three", []int{0, 1, 1}, 67, 2, false},
		{"one of three", []int{0, 0, 1}, 33, 1, false},
		{"none answered", nil, 0, 0, false},
		{"partial answers", []int{0}, 33, 1, false},
		{"out of range counts wrong", []int{9, 1, 0}, 67, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Grade(sampleQuiz(), tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.correct, res.Correct)
			assert.Equal(t, 3, res.Total)
			assert.Equal(t, tt.passed, res.Passed)
			assert.Len(t, res.Reviews, 3)
		})
	}
}

func TestGradePassThreshold(t *testing.T) {
	q := ledger.Quiz{}
	for i := 0; i < 10; i++ {
		q.Questions = append(q.Questions, ledger.Question{Options: []string{"a", "b"}, CorrectAnswer: 0})
	}
	answers := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}
	res, err := Grade(q, answers)
	require.NoError(t, err)
	assert.Equal(t, 70, res.Score)
	assert.True(t, res.Passed)

	answers[6] = 1
	res, _ = Grade(q, answers)
	assert.False(t, res.Passed)
}

func TestGradeReview(t *testing.T) {
	res, err := Grade(sampleQuiz(), []int{3, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Reviews[0].Chosen)
	assert.False(t, res.Reviews[0].Correct)
	assert.True(t, res.Reviews[1].Correct)
	assert.Equal(t, Unanswered, res.Reviews[2].Chosen)
}

func TestGradeDoesNotMutate(t *testing.T) {
	q := sampleQuiz()
	_, err := Grade(q, []int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, q.Attempts)
	assert.Equal(t, sampleQuiz(), q)
}

func TestGradeErrors(t *testing.T) {
	_, err := Grade(ledger.Quiz{ID: "empty"}, nil)
	assert.Error(t, err)

	_, err = Grade(sampleQuiz(), []int{0, 0, 0, 0})
	assert.Error(t, err)
}

func TestAttempt(t *testing.T) {
	a := NewAttempt(sampleQuiz())
	q, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, "1", q.ID)

	assert.Error(t, a.Answer(4), "out of range")
	require.NoError(t, a.Answer(0))
	require.NoError(t, a.Answer(1))
	assert.Equal(t, 2, a.Index())
	assert.False(t, a.Done())
	require.NoError(t, a.Answer(1))
	assert.True(t, a.Done())
	assert.Error(t, a.Answer(0))

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, 67, res.Score)

	a.Restart()
	assert.Equal(t, 0, a.Index())
}

const jsonDoc = `{
  "title": "Physics Mechanics",
  "subject": "Physics",
  "difficulty": "hard",
  "timeLimit": 45,
  "tags": ["mechanics"],
  "questions": [
    {"question": "What is Newton's second law?", "options": ["F = ma", "E = mc²"], "correctAnswer": 0}
  ]
}`

func TestParseDocumentJSON(t *testing.T) {
	in, err := ParseDocument([]byte(jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, "Physics Mechanics", in.Title)
	assert.Equal(t, ledger.DifficultyHard, in.Difficulty)
	assert.Equal(t, 45, in.TimeLimitMinutes)
	require.Len(t, in.Questions, 1)
	assert.Equal(t, "F = ma", in.Questions[0].Options[0])
}

func TestParseDocumentYAMLDefaultsTimeLimit(t *testing.T) {
	doc := `
title: Cells
subject: Biology
difficulty: easy
questions:
  - question: Powerhouse of the cell?
    options: [Mitochondria, Nucleus]
    correctAnswer: 0
    explanation: It produces ATP.
`
	in, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeLimit, in.TimeLimitMinutes)
	assert.Equal(t, "It produces ATP.", in.Questions[0].Explanation)
}

func TestParseDocumentRejects(t *testing.T) {
	tests := map[string]string{
		"empty":          ``,
		"not an object":  `[1, 2]`,
		"bad difficulty": `{"title":"t","subject":"s","difficulty":"extreme","questions":[{"question":"q","options":["a","b"],"correctAnswer":0}]}`,
		"no questions":   `{"title":"t","subject":"s","difficulty":"easy","questions":[]}`,
		"one option":     `{"title":"t","subject":"s","difficulty":"easy","questions":[{"question":"q","options":["a"],"correctAnswer":0}]}`,
		"unknown field":  `{"title":"t","subject":"s","difficulty":"easy","color":"red","questions":[{"question":"q","options":["a","b"],"correctAnswer":0}]}`,
		"missing title":  `{"subject":"s","difficulty":"easy","questions":[{"question":"q","options":["a","b"],"correctAnswer":0}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseDocumentAnswerOutOfRange(t *testing.T) {
	doc := `{"title":"t","subject":"s","difficulty":"easy","questions":[{"question":"q","options":["a","b"],"correctAnswer":2}]}`
	_, err := ParseDocument([]byte(doc))
	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "questions[0].correctAnswer", ve.Field)
}

func TestExportParses(t *testing.T) {
	q := sampleQuiz()
	q.TimeLimitMinutes = 20
	data, err := Export(q)
	require.NoError(t, err)

	in, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, q.Title, in.Title)
	assert.Len(t, in.Questions, 3)
}
