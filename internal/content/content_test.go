package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/stats"
)

func TestDefaultFixtures(t *testing.T) {
	s := Default()

	friends := s.Friends()
	require.Len(t, friends, 3)
	assert.Equal(t, "Sarah Chen", friends[0].Name)
	assert.Equal(t, PresenceOnline, friends[0].Status)
	assert.Equal(t, 1, CountPresence(friends, PresenceStudying))

	require.Len(t, s.FriendRequests(), 2)
	assert.Equal(t, 5, s.FriendRequests()[1].MutualFriends)

	sugg := s.Suggestions()
	require.Len(t, sugg, 2)
	assert.Equal(t, "David Kim", sugg[0].Name)
	assert.Equal(t, "Same university and major", sugg[0].Reason)

	groups := s.StudyGroups()
	require.Len(t, groups, 3)
	assert.True(t, groups[0].Joined)
	assert.False(t, groups[1].Joined)

	assert.Len(t, s.LeaderboardEntries(), 10)
}

func TestSampleQuizzesAreValid(t *testing.T) {
	quizzes := Default().SampleQuizzes()
	require.Len(t, quizzes, 2)

	calc := quizzes[0]
	assert.Equal(t, "Calculus Fundamentals", calc.Title)
	assert.Equal(t, ledger.DifficultyMedium, calc.Difficulty)
	assert.Equal(t, 30, calc.TimeLimitMinutes)
	assert.Equal(t, SystemUserID, calc.UserID)
	require.Len(t, calc.Questions, 2)
	assert.Equal(t, 1, calc.Questions[1].CorrectAnswer)
	assert.Equal(t, "x² + C", calc.Questions[1].Options[1])

	for _, q := range quizzes {
		assert.NoError(t, q.Input().Validate(), q.ID)
	}
}

func TestSampleQuizzesAreCopies(t *testing.T) {
	s := Default()
	q := s.SampleQuizzes()[0]
	q.Questions[0].Options[0] = "changed"
	q.Tags[0] = "changed"

	again := s.SampleQuizzes()[0]
	assert.Equal(t, "2x", again.Questions[0].Options[0])
	assert.Equal(t, "calculus", again.Tags[0])
}

func TestSampleQuiz(t *testing.T) {
	q, ok := SampleQuiz(Default(), "sample_2")
	require.True(t, ok)
	assert.Equal(t, "Physics Mechanics", q.Title)

	_, ok = SampleQuiz(Default(), "missing")
	assert.False(t, ok)
}

func TestLoadFromRejectsInvalidQuiz(t *testing.T) {
	doc := `
quizzes:
  - id: broken
    title: Broken
    subject: Math
    difficulty: medium
    questions:
      - id: "1"
        question: Pick one
        options: ["a", "b"]
        answer: 5
`
	_, err := LoadFrom(strings.NewReader(doc))
	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadFromRejectsUnknownFields(t *testing.T) {
	_, err := LoadFrom(strings.NewReader("friends:\n  - nickname: x\n"))
	assert.Error(t, err)
}

func TestLoadFromEmpty(t *testing.T) {
	s, err := LoadFrom(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Friends())
	assert.Empty(t, s.SampleQuizzes())
}

func TestFilterFriends(t *testing.T) {
	friends := Default().Friends()
	assert.Len(t, FilterFriends(friends, ""), 3)
	assert.Len(t, FilterFriends(friends, "  harvard "), 1)
	assert.Len(t, FilterFriends(friends, "PHYS"), 1)
	assert.Empty(t, FilterFriends(friends, "zzz"))
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"": PeriodAll, "week": PeriodWeek, " Month ": PeriodMonth, "all": PeriodAll} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePeriod("year")
	assert.Error(t, err)

	assert.Equal(t, 7, PeriodWeek.Days())
	assert.Equal(t, 30, PeriodMonth.Days())
	assert.Zero(t, PeriodAll.Days())
}

func TestRankAllTime(t *testing.T) {
	rows := Rank(Default().LeaderboardEntries(), nil, PeriodAll, "")
	require.Len(t, rows, 10)
	assert.Equal(t, "Sarah Chen", rows[0].Name)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 2850, rows[0].Points)
	assert.Equal(t, 10, rows[9].Rank)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Points, rows[i].Points)
	}
}

func TestRankWeekReorders(t *testing.T) {
	rows := Rank(Default().LeaderboardEntries(), nil, PeriodWeek, AllUniversities)
	assert.Equal(t, "Sarah Chen", rows[0].Name)
	assert.Equal(t, "Emma Davis", rows[1].Name)
	assert.Equal(t, 410, rows[1].Points)
}

func TestRankUniversityFilterKeepsYou(t *testing.T) {
	you := LeaderboardEntry{ID: YouID, Name: "Ada", University: "Oxford", Points: PeriodPoints{All: 2500}}
	rows := Rank(Default().LeaderboardEntries(), &you, PeriodAll, "mit")

	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Sarah Chen", "Ada", "Mike Johnson", "Student 6"}, names)
	assert.True(t, rows[1].You)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestRankTiesByName(t *testing.T) {
	entries := []LeaderboardEntry{
		{Name: "Zed", Points: PeriodPoints{All: 10}},
		{Name: "Amy", Points: PeriodPoints{All: 10}},
	}
	rows := Rank(entries, nil, PeriodAll, "")
	assert.Equal(t, "Amy", rows[0].Name)
	assert.Equal(t, "Zed", rows[1].Name)
}

func TestYouEntry(t *testing.T) {
	today := ledger.Date("2026-03-10")
	p := ledger.Profile{DisplayName: "Ada", University: "MIT", Points: 500, Level: 4, StudyStreak: 3, LastStudyDate: today}
	sessions := []ledger.Session{
		{SessionDate: today, DurationMinutes: 30},
		{SessionDate: today.AddDays(-10), DurationMinutes: 50},
		{SessionDate: today.AddDays(-40), DurationMinutes: 100},
	}

	e := YouEntry(p, sessions, today, stats.NewEngine())
	assert.Equal(t, YouID, e.ID)
	assert.Equal(t, "Ada", e.Name)
	assert.Equal(t, 3, e.Streak)
	assert.Equal(t, PeriodPoints{Week: 60, Month: 160, All: 500}, e.Points)
}

func TestUniversities(t *testing.T) {
	assert.Equal(t,
		[]string{"Berkeley", "Harvard", "MIT", "Stanford", "UCLA"},
		Universities(Default().LeaderboardEntries()))
}

func TestLeaderboard(t *testing.T) {
	you := &LeaderboardEntry{ID: YouID, Name: "Ada", Points: PeriodPoints{Week: 1000}}
	rows := Leaderboard(Default(), PeriodWeek, "", you)
	require.Len(t, rows, 11)
	assert.True(t, rows[0].You)
	assert.Equal(t, 1000, rows[0].Points)
}
