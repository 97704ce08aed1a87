// Package stats derives hours, points, streaks and levels from the session
// ledger. Everything here is pure; callers pass "today" explicitly.
package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/blink-new/studytrack/internal/ledger"
)

// Defaults used when configuration leaves a value unset.
const (
	DefaultPointsPerLevel = 150
	DefaultDailyGoalHours = 4.0
	WeekDays              = 7
)

// StreakPolicy decides what happens to a streak after a gap of more than
// one day.
type StreakPolicy int

const (
	// StreakReset restarts the streak at 1 when studying after a gap.
	StreakReset StreakPolicy = iota
	// StreakKeep leaves the streak untouched after a gap. It neither grows
	// nor resets until the next consecutive day.
	StreakKeep
)

func (p StreakPolicy) String() string {
	switch p {
	case StreakReset:
		return "reset"
	case StreakKeep:
		return "keep"
	default:
		return fmt.Sprintf("StreakPolicy(%d)", int(p))
	}
}

// ParseStreakPolicy parses "reset" or "keep".
func ParseStreakPolicy(s string) (StreakPolicy, error) {
	switch s {
	case "reset", "":
		return StreakReset, nil
	case "keep":
		return StreakKeep, nil
	default:
		return 0, fmt.Errorf("unknown streak policy %q (want reset or keep)", s)
	}
}

// TodayTotalHours sums the hours of sessions dated today.
func TodayTotalHours(sessions []ledger.Session, today ledger.Date) float64 {
	var minutes int
	for _, s := range sessions {
		if s.SessionDate == today {
			minutes += s.DurationMinutes
		}
	}
	return float64(minutes) / 60
}

// WeeklyTotalHours sums the hours of sessions dated within the trailing
// seven calendar days, today included.
func WeeklyTotalHours(sessions []ledger.Session, today ledger.Date) float64 {
	start := today.AddDays(-(WeekDays - 1))
	var minutes int
	for _, s := range sessions {
		if !s.SessionDate.Before(start) && !today.Before(s.SessionDate) {
			minutes += s.DurationMinutes
		}
	}
	return float64(minutes) / 60
}

// PeriodPoints sums the points earned by sessions dated within the trailing
// days calendar days, today included. days <= 0 counts every session.
func PeriodPoints(sessions []ledger.Session, today ledger.Date, days int) int {
	var start ledger.Date
	if days > 0 {
		start = today.AddDays(-(days - 1))
	}
	var points int
	for _, s := range sessions {
		if days > 0 && (s.SessionDate.Before(start) || today.Before(s.SessionDate)) {
			continue
		}
		points += PointsForSession(s.DurationMinutes)
	}
	return points
}

// PointsForSession returns the points a session of the given length earns.
func PointsForSession(durationMinutes int) int {
	return int(math.Floor(float64(durationMinutes) * 2))
}

// LevelFor returns the level reached with the given points.
func LevelFor(points, pointsPerLevel int) int {
	if pointsPerLevel <= 0 {
		pointsPerLevel = DefaultPointsPerLevel
	}
	if points < 0 {
		points = 0
	}
	return 1 + points/pointsPerLevel
}

// StreakChange describes how one session moved the streak.
type StreakChange int

const (
	StreakUnchanged StreakChange = iota
	StreakExtended
	StreakRestarted
)

// Accrual is what one session added to a profile.
type Accrual struct {
	Points     int
	Hours      float64
	Streak     StreakChange
	LevelUp    bool
	PrevLevel  int
	PrevStreak int
}

// Engine applies sessions to profiles.
type Engine struct {
	Policy         StreakPolicy
	PointsPerLevel int
}

// NewEngine returns an engine with the default streak policy and level size.
func NewEngine() Engine {
	return Engine{Policy: StreakReset, PointsPerLevel: DefaultPointsPerLevel}
}

// ApplySession returns profile updated for session. The streak rule looks
// at the profile as it was before this session:
//
//   - a session not dated today never changes the streak
//   - a first session ever, or a first session today after studying
//     yesterday, extends the streak by one
//   - a second session on the same day leaves the streak alone
//   - after a longer gap the Policy decides
//
// LastStudyDate only ever moves forward.
func (e Engine) ApplySession(p ledger.Profile, s ledger.Session, today ledger.Date) (ledger.Profile, Accrual) {
	acc := Accrual{
		Points:     PointsForSession(s.DurationMinutes),
		Hours:      s.Hours(),
		PrevLevel:  p.Level,
		PrevStreak: p.StudyStreak,
	}

	if s.SessionDate == today {
		last := p.LastStudyDate
		switch {
		case last.IsZero(), last == today.AddDays(-1):
			p.StudyStreak++
			acc.Streak = StreakExtended
		case last == today, today.Before(last):
			// Same day, or a stored date ahead of the clock.
		case e.Policy == StreakReset:
			p.StudyStreak = 1
			acc.Streak = StreakRestarted
		}
	}

	p.Points += acc.Points
	p.TotalStudyHours += acc.Hours
	p.Level = max(p.Level, LevelFor(p.Points, e.PointsPerLevel))
	acc.LevelUp = p.Level > acc.PrevLevel

	if p.LastStudyDate.IsZero() || p.LastStudyDate.Before(s.SessionDate) {
		p.LastStudyDate = s.SessionDate
	}
	return p, acc
}

// CurrentStreak reports the streak as displayed on a given day. Under
// StreakReset a streak whose last study day is before yesterday has lapsed
// and shows as 0; the stored value is corrected on the next session.
func (e Engine) CurrentStreak(p ledger.Profile, today ledger.Date) int {
	if e.Policy == StreakReset && !p.LastStudyDate.IsZero() &&
		p.LastStudyDate.Before(today.AddDays(-1)) {
		return 0
	}
	return p.StudyStreak
}

// DayTotal is the study time of one calendar day.
type DayTotal struct {
	Date    ledger.Date
	Minutes int
}

// SubjectTotal is the study time spent on one subject.
type SubjectTotal struct {
	Subject  string
	Minutes  int
	Sessions int
}

// Summary aggregates a user's ledger for display.
type Summary struct {
	Today        ledger.Date
	TodayHours   float64
	WeeklyHours  float64
	GoalHours    float64
	GoalProgress float64 // 0..1, capped
	Streak       int
	Points       int
	Level        int
	TotalHours   float64
	SessionCount int
	LastWeek     []DayTotal // oldest first, WeekDays entries
	BySubject    []SubjectTotal
	Recent       []ledger.Session
}

// RecentSessions is how many sessions a Summary carries.
const RecentSessions = 5

// Summarize builds the dashboard view of a ledger.
func (e Engine) Summarize(p ledger.Profile, sessions []ledger.Session, today ledger.Date, goalHours float64) Summary {
	if goalHours <= 0 {
		goalHours = DefaultDailyGoalHours
	}
	sum := Summary{
		Today:        today,
		TodayHours:   TodayTotalHours(sessions, today),
		WeeklyHours:  WeeklyTotalHours(sessions, today),
		GoalHours:    goalHours,
		Streak:       e.CurrentStreak(p, today),
		Points:       p.Points,
		Level:        p.Level,
		TotalHours:   p.TotalStudyHours,
		SessionCount: len(sessions),
	}
	sum.GoalProgress = min(sum.TodayHours/goalHours, 1)

	byDay := make(map[ledger.Date]int, WeekDays)
	bySubject := make(map[string]*SubjectTotal)
	for _, s := range sessions {
		byDay[s.SessionDate] += s.DurationMinutes
		st, ok := bySubject[s.Subject]
		if !ok {
			st = &SubjectTotal{Subject: s.Subject}
			bySubject[s.Subject] = st
		}
		st.Minutes += s.DurationMinutes
		st.Sessions++
	}
	for i := WeekDays - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		sum.LastWeek = append(sum.LastWeek, DayTotal{Date: d, Minutes: byDay[d]})
	}
	for _, st := range bySubject {
		sum.BySubject = append(sum.BySubject, *st)
	}
	slices.SortFunc(sum.BySubject, func(a, b SubjectTotal) int {
		if a.Minutes != b.Minutes {
			return b.Minutes - a.Minutes
		}
		if a.Subject < b.Subject {
			return -1
		}
		if a.Subject > b.Subject {
			return 1
		}
		return 0
	})

	n := min(RecentSessions, len(sessions))
	sum.Recent = slices.Clone(sessions[:n])
	return sum
}
