// Package achievements evaluates milestone badges against a user's ledger.
// Achievements are derived, never stored: the same ledger always yields
// the same set.
package achievements

import (
	"math"

	"github.com/blink-new/studytrack/internal/ledger"
)

// Input is the ledger data achievements are measured against.
type Input struct {
	Profile   ledger.Profile
	Sessions  []ledger.Session
	Materials []ledger.Material
	Quizzes   []ledger.Quiz
}

// FromSnapshot builds an Input from a ledger snapshot.
func FromSnapshot(snap ledger.Snapshot) Input {
	in := Input{
		Sessions:  snap.Sessions,
		Materials: snap.Materials,
		Quizzes:   snap.Quizzes,
	}
	if snap.Profile != nil {
		in.Profile = *snap.Profile
	}
	return in
}

// Definition describes one achievement.
type Definition struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Rarity      Rarity
	Target      float64
	measure     func(Input) float64
}

// Status is an achievement's progress for one user.
type Status struct {
	Definition
	Value  float64
	Earned bool
}

// Percent returns progress toward the target, capped at 100.
func (s Status) Percent() int {
	if s.Target <= 0 {
		return 100
	}
	return int(math.Min(100, math.Floor(s.Value/s.Target*100)))
}

// nightOwlHour is the local hour from which a session counts as late-night.
const nightOwlHour = 22

// Definitions lists every achievement in display order.
var Definitions = []Definition{
	{
		ID: "first-steps", Name: "First Steps", Description: "Log your first study session",
		Kind: KindSessions, Rarity: RarityCommon, Target: 1,
		measure: func(in Input) float64 { return float64(len(in.Sessions)) },
	},
	{
		ID: "study-warrior", Name: "Study Warrior", Description: "Study for 100+ hours",
		Kind: KindHours, Rarity: RarityEpic, Target: 100,
		measure: func(in Input) float64 { return in.Profile.TotalStudyHours },
	},
	{
		ID: "streak-master", Name: "Streak Master", Description: "Reach a 15-day study streak",
		Kind: KindStreak, Rarity: StreakRarity(15), Target: 15,
		measure: func(in Input) float64 { return float64(in.Profile.StudyStreak) },
	},
	{
		ID: "marathon", Name: "Marathon", Description: "Study 2 hours in one session",
		Kind: KindSessions, Rarity: RarityRare, Target: 120,
		measure: func(in Input) float64 {
			longest := 0
			for _, s := range in.Sessions {
				longest = max(longest, s.DurationMinutes)
			}
			return float64(longest)
		},
	},
	{
		ID: "night-owl", Name: "Night Owl", Description: "Finish a session after 10 pm",
		Kind: KindSessions, Rarity: RarityCommon, Target: 1,
		measure: func(in Input) float64 {
			for _, s := range in.Sessions {
				if s.CreatedAt.Hour() >= nightOwlHour {
					return 1
				}
			}
			return 0
		},
	},
	{
		ID: "centurion", Name: "Centurion", Description: "Log 100 study sessions",
		Kind: KindSessions, Rarity: RarityLegendary, Target: 100,
		measure: func(in Input) float64 { return float64(len(in.Sessions)) },
	},
	{
		ID: "curator", Name: "Curator", Description: "Collect 10 study materials",
		Kind: KindLibrary, Rarity: RarityCommon, Target: 10,
		measure: func(in Input) float64 { return float64(len(in.Materials)) },
	},
	{
		ID: "quiz-maker", Name: "Quiz Maker", Description: "Create 5 quizzes",
		Kind: KindLibrary, Rarity: RarityRare, Target: 5,
		measure: func(in Input) float64 { return float64(len(in.Quizzes)) },
	},
}

// Evaluate measures every achievement against in.
func Evaluate(in Input) []Status {
	out := make([]Status, 0, len(Definitions))
	for _, d := range Definitions {
		v := d.measure(in)
		out = append(out, Status{Definition: d, Value: v, Earned: v >= d.Target})
	}
	return out
}

// Earned returns only the earned achievements.
func Earned(in Input) []Status {
	var out []Status
	for _, s := range Evaluate(in) {
		if s.Earned {
			out = append(out, s)
		}
	}
	return out
}

// Unlocked returns achievements earned in after but not in before.
func Unlocked(before, after Input) []Status {
	had := make(map[string]bool)
	for _, s := range Earned(before) {
		had[s.ID] = true
	}
	var out []Status
	for _, s := range Earned(after) {
		if !had[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
