package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// ActivityRecord is append-only: rows are never updated or deleted.
// Details is an opaque client payload stored verbatim as JSONB.
type ActivityRecord struct {
	ID           int64
	UserID       uuid.UUID
	ActivityType string
	Details      map[string]any
	OccurredAt   time.Time
}

// StreakState is the persisted per-user streak row. LastActiveDate is a
// calendar date at UTC midnight; all day-gap arithmetic relies on that.
type StreakState struct {
	UserID         uuid.UUID
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate time.Time
	UpdatedAt      time.Time
}

type DailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StreakData is the read projection returned to clients. CurrentStreak is
// already staleness-adjusted (0 when the chain is broken).
type StreakData struct {
	CurrentStreak    int             `json:"currentStreak"`
	LongestStreak    int             `json:"longestStreak"`
	TotalActivities  int             `json:"totalActivities"`
	LastActiveDate   time.Time       `json:"lastActiveDate"`
	ActivityCalendar []DailyActivity `json:"activityCalendar"`
}
