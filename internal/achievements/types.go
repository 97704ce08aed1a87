package achievements

// Kind groups achievements by what they measure.
type Kind string

const (
	KindHours    Kind = "hours"
	KindStreak   Kind = "streak"
	KindSessions Kind = "sessions"
	KindLibrary  Kind = "library"
)

// DisplayName returns a human-readable label for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindHours:
		return "Hours"
	case KindStreak:
		return "Streak"
	case KindSessions:
		return "Sessions"
	case KindLibrary:
		return "Library"
	default:
		return string(k)
	}
}

// Icon returns the display icon for the kind.
func (k Kind) Icon() string {
	switch k {
	case KindHours:
		return "🏆"
	case KindStreak:
		return "🔥"
	case KindSessions:
		return "⏱"
	case KindLibrary:
		return "📚"
	default:
		return "✦"
	}
}

// Rarity is the difficulty tier of an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// StreakRarity returns the rarity of a study streak of the given length.
func StreakRarity(days int) Rarity {
	switch {
	case days >= 30:
		return RarityLegendary
	case days >= 15:
		return RarityEpic
	case days >= 7:
		return RarityRare
	default:
		return RarityCommon
	}
}

// NextStreakMilestone returns the next streak length worth celebrating
// above current.
func NextStreakMilestone(current int) int {
	for _, m := range []int{3, 7, 15, 30} {
		if m > current {
			return m
		}
	}
	// Beyond 30, every 30 days.
	return ((current / 30) + 1) * 30
}
