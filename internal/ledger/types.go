package ledger

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. The zero value means absent.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d == "" }

// Valid reports whether d parses as a calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

// Time parses d as midnight UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse(dateLayout, string(d))
}

// AddDays shifts the date by n calendar days. Invalid dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	a, errA := time.Parse(dateLayout, string(d))
	b, errB := time.Parse(dateLayout, string(other))
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

func (d Date) String() string { return string(d) }

// Profile is the per-user aggregate the stats engine maintains.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	University      string    `json:"university,omitempty"`
	Major           string    `json:"major,omitempty"`
	YearOfStudy     int       `json:"yearOfStudy,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	StudyStreak     int       `json:"studyStreak"`
	TotalStudyHours float64   `json:"totalStudyHours"`
	Points          int       `json:"points"`
	Level           int       `json:"level"`
	LastStudyDate   Date      `json:"lastStudyDate,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewProfile returns the default profile for a freshly signed-in user.
func NewProfile(id, email, displayName string, now time.Time) Profile {
	p := Profile{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.normalize()
	return p
}

// normalize applies the defaulting rules for partially populated profiles.
func (p *Profile) normalize() {
	if p.StudyStreak < 0 {
		p.StudyStreak = 0
	}
	if p.TotalStudyHours < 0 {
		p.TotalStudyHours = 0
	}
	if p.Points < 0 {
		p.Points = 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		p.DisplayName = defaultDisplayName(p.Email)
	}
}

func defaultDisplayName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Student"
}

// Session is one committed block of study time. Sessions are immutable.
type Session struct {
	ID              string    `json:"id"`
	Seq             int       `json:"seq"`
	UserID          string    `json:"userId"`
	Subject         string    `json:"subject"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes,omitempty"`
	SessionDate     Date      `json:"sessionDate"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Hours returns the session duration in hours.
func (s Session) Hours() float64 {
	return float64(s.DurationMinutes) / 60
}

// MaterialType enumerates study material kinds.
type MaterialType string

const (
	MaterialNote      MaterialType = "note"
	MaterialFlashcard MaterialType = "flashcard"
	MaterialDocument  MaterialType = "document"
	MaterialVideo     MaterialType = "video"
)

// MaterialTypes lists all valid material types in display order.
var MaterialTypes = []MaterialType{MaterialNote, MaterialFlashcard, MaterialDocument, MaterialVideo}

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	for _, v := range MaterialTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Material is a user-authored study artifact.
type Material struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Title     string       `json:"title"`
	Subject   string       `json:"subject"`
	Type      MaterialType `json:"materialType"`
	Content   string       `json:"content,omitempty"`
	FileURL   string       `json:"fileUrl,omitempty"`
	Tags      []string     `json:"tags"`
	IsPublic  bool         `json:"isPublic"`
	Views     int          `json:"views"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Difficulty grades a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists all valid difficulties in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// Question is a single multiple-choice question.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is an ordered set of questions.
type Quiz struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Title            string     `json:"title"`
	Subject          string     `json:"subject"`
	Description      string     `json:"description,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitMinutes int        `json:"timeLimit"`
	IsPublic         bool       `json:"isPublic"`
	Attempts         int        `json:"attempts"`
	AverageScore     float64    `json:"averageScore"`
	Tags             []string   `json:"tags"`
	Questions        []Question `json:"questions"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Snapshot is a consistent copy of one user's ledger.
type Snapshot struct {
	Profile   *Profile
	Sessions  []Session
	Materials []Material
	Quizzes   []Quiz
}
