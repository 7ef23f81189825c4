package domain

import (
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// ExceptionType kind of a dated schedule override
type ExceptionType string

const (
	ExceptionOpen   ExceptionType = "OPEN"
	ExceptionClosed ExceptionType = "CLOSED"
)

// IsValid returns true for a known exception type
func (t ExceptionType) IsValid() bool {
	return t == ExceptionOpen || t == ExceptionClosed
}

// GeneralSchedule recurring weekly availability block of a chapel
// Several blocks per day are allowed
type GeneralSchedule struct {
	ID        int64
	ChapelID  int64
	DayOfWeek int // 0 = Sunday .. 6 = Saturday
	StartTime types.TimeString
	EndTime   types.TimeString
	Active    bool
}

// Weekday returns the block's day as time.Weekday
func (g *GeneralSchedule) Weekday() time.Weekday {
	return time.Weekday(g.DayOfWeek)
}

// SpecificSchedule dated override of the general schedule
// StartTime/EndTime are meaningful only for OPEN exceptions
type SpecificSchedule struct {
	ID            int64
	ChapelID      int64
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	ExceptionType ExceptionType
	Reason        string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsClosed returns true for a CLOSED override
func (s *SpecificSchedule) IsClosed() bool {
	return s.ExceptionType == ExceptionClosed
}

// ConflictsWith returns true if both overrides target the same date with different types
// (an OPEN and a CLOSED row for one chapel/date is a data-entry error)
func (s *SpecificSchedule) ConflictsWith(other *SpecificSchedule) bool {
	if s.ID != 0 && s.ID == other.ID {
		return false
	}
	return SameDate(s.Date, other.Date) && s.ExceptionType != other.ExceptionType
}

// SpecificScheduleFilter фильтр для списка исключений часовни
type SpecificScheduleFilter struct {
	ChapelID      int64
	ExceptionType *ExceptionType
	StartDate     *time.Time
	EndDate       *time.Time
	Pagination
}

// SameDate returns true if both times fall on the same calendar day
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateOnly truncates a time to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
