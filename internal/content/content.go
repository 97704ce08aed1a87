// Package content serves the read-only social data shown next to a user's
// own ledger: friends, study groups, the leaderboard and the sample quiz
// library. The data ships as an embedded YAML file and can be replaced
// with a file of the same shape.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/stats"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// SystemUserID owns the sample quizzes.
const SystemUserID = "system"

// Presence is a friend's online state.
type Presence string

const (
	PresenceOnline   Presence = "online"
	PresenceStudying Presence = "studying"
	PresenceOffline  Presence = "offline"
)

// Friend is an accepted connection.
type Friend struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	University string   `yaml:"university"`
	Major      string   `yaml:"major"`
	Level      int      `yaml:"level"`
	Streak     int      `yaml:"streak"`
	TotalHours float64  `yaml:"total_hours"`
	Status     Presence `yaml:"status"`
	LastActive string   `yaml:"last_active"`
	Activity   string   `yaml:"activity"`
}

// FriendRequest is a pending incoming request.
type FriendRequest struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	University    string `yaml:"university"`
	Major         string `yaml:"major"`
	MutualFriends int    `yaml:"mutual_friends"`
}

// Suggestion is a person the user might know.
type Suggestion struct {
	FriendRequest `yaml:",inline"`
	Reason        string `yaml:"reason"`
}

// StudyGroup is a shared study circle.
type StudyGroup struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Subject     string `yaml:"subject"`
	University  string `yaml:"university"`
	Members     int    `yaml:"members"`
	NextSession string `yaml:"next_session"`
	Joined      bool   `yaml:"joined"`
}

// PeriodPoints holds points earned over each leaderboard period.
type PeriodPoints struct {
	Week  int `yaml:"week"`
	Month int `yaml:"month"`
	All   int `yaml:"all"`
}

// For returns the points for period p.
func (pp PeriodPoints) For(p Period) int {
	switch p {
	case PeriodWeek:
		return pp.Week
	case PeriodMonth:
		return pp.Month
	default:
		return pp.All
	}
}

// LeaderboardEntry is one student on the leaderboard.
type LeaderboardEntry struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	University string       `yaml:"university"`
	Major      string       `yaml:"major"`
	Level      int          `yaml:"level"`
	Streak     int          `yaml:"streak"`
	StudyHours float64      `yaml:"study_hours"`
	Points     PeriodPoints `yaml:"points"`
}

type question struct {
	ID          string   `yaml:"id"`
	Prompt      string   `yaml:"question"`
	Options     []string `yaml:"options"`
	Answer      int      `yaml:"answer"`
	Explanation string   `yaml:"explanation"`
}

type quiz struct {
	ID           string     `yaml:"id"`
	Title        string     `yaml:"title"`
	Subject      string     `yaml:"subject"`
	Description  string     `yaml:"description"`
	Difficulty   string     `yaml:"difficulty"`
	TimeLimit    int        `yaml:"time_limit"`
	Attempts     int        `yaml:"attempts"`
	AverageScore float64    `yaml:"average_score"`
	Tags         []string   `yaml:"tags"`
	Questions    []question `yaml:"questions"`
}

type fixtures struct {
	Friends     []Friend           `yaml:"friends"`
	Requests    []FriendRequest    `yaml:"requests"`
	Suggestions []Suggestion       `yaml:"suggestions"`
	Groups      []StudyGroup       `yaml:"groups"`
	Leaderboard []LeaderboardEntry `yaml:"leaderboard"`
	Quizzes     []quiz             `yaml:"quizzes"`
}

// Provider supplies social and sample content.
type Provider interface {
	Friends() []Friend
	FriendRequests() []FriendRequest
	Suggestions() []Suggestion
	StudyGroups() []StudyGroup
	LeaderboardEntries() []LeaderboardEntry
	SampleQuizzes() []ledger.Quiz
}

// Static is a Provider backed by a fixtures document.
type Static struct {
	f       fixtures
	quizzes []ledger.Quiz
}

var _ Provider = (*Static)(nil)

// Default returns the embedded fixtures.
func Default() *Static {
	s, err := LoadFrom(bytes.NewReader(fixturesYAML))
	if err != nil {
		panic(fmt.Sprintf("content: embedded fixtures: %v", err))
	}
	return s
}

// LoadFrom parses a fixtures document. Every sample quiz must pass the
// same validation user quizzes do.
func LoadFrom(r io.Reader) (*Static, error) {
	var f fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	s := &Static{f: f}
	for _, q := range f.Quizzes {
		lq := q.toLedger()
		if err := lq.Input().Validate(); err != nil {
			return nil, fmt.Errorf("sample quiz %q: %w", q.ID, err)
		}
		s.quizzes = append(s.quizzes, lq)
	}
	return s, nil
}

func (q quiz) toLedger() ledger.Quiz {
	out := ledger.Quiz{
		ID:               q.ID,
		UserID:           SystemUserID,
		Title:            q.Title,
		Subject:          q.Subject,
		Description:      q.Description,
		Difficulty:       ledger.Difficulty(q.Difficulty),
		TimeLimitMinutes: q.TimeLimit,
		IsPublic:         true,
		Attempts:         q.Attempts,
		AverageScore:     q.AverageScore,
		Tags:             slices.Clone(q.Tags),
	}
	for _, qq := range q.Questions {
		out.Questions = append(out.Questions, ledger.Question{
			ID:            qq.ID,
			Prompt:        qq.Prompt,
			Options:       slices.Clone(qq.Options),
			CorrectAnswer: qq.Answer,
			Explanation:   qq.Explanation,
		})
	}
	return out
}

func (s *Static) Friends() []Friend               { return slices.Clone(s.f.Friends) }
func (s *Static) FriendRequests() []FriendRequest { return slices.Clone(s.f.Requests) }
func (s *Static) Suggestions() []Suggestion       { return slices.Clone(s.f.Suggestions) }
func (s *Static) StudyGroups() []StudyGroup       { return slices.Clone(s.f.Groups) }

func (s *Static) LeaderboardEntries() []LeaderboardEntry {
	return slices.Clone(s.f.Leaderboard)
}

// SampleQuizzes returns deep copies of the sample quiz library.
func (s *Static) SampleQuizzes() []ledger.Quiz {
	out := make([]ledger.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		q.Tags = slices.Clone(q.Tags)
		qs := make([]ledger.Question, len(q.Questions))
		for i, qq := range q.Questions {
			qq.Options = slices.Clone(qq.Options)
			qs[i] = qq
		}
		q.Questions = qs
		out = append(out, q)
	}
	return out
}

// SampleQuiz looks up a sample quiz by ID.
func SampleQuiz(p Provider, id string) (ledger.Quiz, bool) {
	for _, q := range p.SampleQuizzes() {
		if q.ID == id {
			return q, true
		}
	}
	return ledger.Quiz{}, false
}

// FilterFriends returns friends whose name, university or major contains
// query, case-insensitively.
func FilterFriends(friends []Friend, query string) []Friend {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return friends
	}
	var out []Friend
	for _, f := range friends {
		if strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.University), q) ||
			strings.Contains(strings.ToLower(f.Major), q) {
			out = append(out, f)
		}
	}
	return out
}

// CountPresence returns how many friends have the given presence.
func CountPresence(friends []Friend, p Presence) int {
	n := 0
	for _, f := range friends {
		if f.Status == p {
			n++
		}
	}
	return n
}

// Period is a leaderboard time window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Days returns the window length in days, 0 for all time.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 0
	}
}

// ParsePeriod parses a period name. Empty means all time.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	case "":
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("unknown period %q (want week, month or all)", s)
	}
}

// YouID identifies the signed-in user's own leaderboard row.
const YouID = "you"

// YouEntry builds the signed-in user's leaderboard row from their ledger.
func YouEntry(p ledger.Profile, sessions []ledger.Session, today ledger.Date, engine stats.Engine) LeaderboardEntry {
	return LeaderboardEntry{
		ID:         YouID,
		Name:       p.DisplayName,
		University: p.University,
		Major:      p.Major,
		Level:      p.Level,
		Streak:     engine.CurrentStreak(p, today),
		StudyHours: p.TotalStudyHours,
		Points: PeriodPoints{
			Week:  stats.PeriodPoints(sessions, today, PeriodWeek.Days()),
			Month: stats.PeriodPoints(sessions, today, PeriodMonth.Days()),
			All:   p.Points,
		},
	}
}

// Ranked is a leaderboard row with its position.
type Ranked struct {
	LeaderboardEntry
	Rank   int
	Points int
	You    bool
}

// AllUniversities disables the university filter.
const AllUniversities = "all"

// Rank orders entries by points for period, highest first, with ties broken
// by name. A non-empty university other than AllUniversities keeps only
// entries from that university; the you row is always included when given.
func Rank(entries []LeaderboardEntry, you *LeaderboardEntry, period Period, university string) []Ranked {
	filter := strings.TrimSpace(university)
	if strings.EqualFold(filter, AllUniversities) {
		filter = ""
	}

	var rows []Ranked
	for _, e := range entries {
		if filter != "" && !strings.EqualFold(e.University, filter) {
			continue
		}
		rows = append(rows, Ranked{LeaderboardEntry: e, Points: e.Points.For(period)})
	}
	if you != nil {
		rows = append(rows, Ranked{LeaderboardEntry: *you, Points: you.Points.For(period), You: true})
	}

	slices.SortStableFunc(rows, func(a, b Ranked) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return strings.Compare(a.Name, b.Name)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Leaderboard ranks the provider's entries plus you for period.
func Leaderboard(p Provider, period Period, university string, you *LeaderboardEntry) []Ranked {
	return Rank(p.LeaderboardEntries(), you, period, university)
}

// Universities lists the distinct universities on a leaderboard, sorted.
func Universities(entries []LeaderboardEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.University != "" && !seen[e.University] {
			seen[e.University] = true
			out = append(out, e.University)
		}
	}
	slices.Sort(out)
	return out
}
