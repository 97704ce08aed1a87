package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blink-new/studytrack/internal/store"
)

func calculusQuiz() QuizInput {
	return QuizInput{
		Title:            "Calculus Fundamentals",
		Subject:          "Mathematics",
		Difficulty:       DifficultyMedium,
		TimeLimitMinutes: 15,
		Tags:             []string{"calculus"},
		Questions: []Question{
			{Prompt: "d/dx x^2?", Options: []string{"x", "2x", "x^2", "2"}, CorrectAnswer: 1},
			{Prompt: "∫ 1 dx?", Options: []string{"x + C", "1"}, CorrectAnswer: 0},
		},
	}
}

func TestCreateQuizAssignsIDs(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	q, err := s.CreateQuiz(ctx, testUser, calculusQuiz())
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	for _, qq := range q.Questions {
		assert.NotEmpty(t, qq.ID)
	}
	assert.Equal(t, testUser, q.UserID)

	got, err := s.Quiz(ctx, testUser, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
}

func TestCreateQuizValidation(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*QuizInput)
		field string
	}{
		{"empty title", func(in *QuizInput) { in.Title = "" }, "title"},
		{"bad difficulty", func(in *QuizInput) { in.Difficulty = "extreme" }, "difficulty"},
		{"no time limit", func(in *QuizInput) { in.TimeLimitMinutes = 0 }, "timeLimit"},
		{"no questions", func(in *QuizInput) { in.Questions = nil }, "questions"},
		{"one option", func(in *QuizInput) { in.Questions[1].Options = []string{"only"} }, "questions[1].options"},
		{"answer out of range", func(in *QuizInput) { in.Questions[0].CorrectAnswer = 4 }, "questions[0].correctAnswer"},
		{"negative answer", func(in *QuizInput) { in.Questions[0].CorrectAnswer = -1 }, "questions[0].correctAnswer"},
		{"empty prompt", func(in *QuizInput) { in.Questions[0].Prompt = " " }, "questions[0].question"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := calculusQuiz()
			tt.edit(&in)
			_, err := s.CreateQuiz(ctx, testUser, in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	snap, _ := s.Snapshot(ctx, testUser)
	assert.Empty(t, snap.Quizzes)
}

func TestUpsertAndRemoveQuiz(t *testing.T) {
	s := newTestStore(t, store.NewMemory())
	ctx := context.Background()

	a, err := s.CreateQuiz(ctx, testUser, calculusQuiz())
	require.NoError(t, err)
	in := calculusQuiz()
	in.Title = "Limits"
	b, err := s.CreateQuiz(ctx, testUser, in)
	require.NoError(t, err)

	a.Difficulty = DifficultyHard
	_, err = s.UpsertQuiz(ctx, testUser, a)
	require.NoError(t, err)

	snap, _ := s.Snapshot(ctx, testUser)
	require.Len(t, snap.Quizzes, 2)
	assert.Equal(t, b.ID, snap.Quizzes[0].ID)
	assert.Equal(t, DifficultyHard, snap.Quizzes[1].Difficulty)

	require.NoError(t, s.RemoveQuiz(ctx, testUser, b.ID))
	_, err = s.Quiz(ctx, testUser, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilterQuizzes(t *testing.T) {
	qs := []Quiz{
		{ID: "1", Title: "Calculus Fundamentals", Subject: "Mathematics", Difficulty: DifficultyMedium},
		{ID: "2", Title: "Organic Chemistry", Subject: "Chemistry", Difficulty: DifficultyHard, Description: "reaction mechanisms"},
		{ID: "3", Title: "Physics Mechanics", Subject: "Physics", Difficulty: DifficultyEasy, Tags: []string{"mechanics"}},
	}

	ids := func(qs []Quiz) []string {
		var out []string
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}

	assert.Equal(t, []string{"2", "3"}, ids(FilterQuizzes(qs, QuizFilter{Query: "mechani"})))
	assert.Equal(t, []string{"2"}, ids(FilterQuizzes(qs, QuizFilter{Difficulty: DifficultyHard})))
	assert.Equal(t, []string{"1"}, ids(FilterQuizzes(qs, QuizFilter{Subject: "Mathematics"})))
	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterQuizzes(qs, QuizFilter{Subject: AllSubjects})))
}

func TestSubjects(t *testing.T) {
	snap := Snapshot{
		Sessions:  []Session{{Subject: "Math"}, {Subject: "Physics"}},
		Materials: []Material{{Subject: "Biology"}, {Subject: "Math"}},
		Quizzes:   []Quiz{{Subject: "Chemistry"}},
	}
	assert.Equal(t, []string{"Biology", "Chemistry", "Math", "Physics"}, Subjects(snap))
}
