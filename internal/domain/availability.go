package domain

import (
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// Human-readable reasons returned when a slot is rejected
const (
	ReasonSlotTaken                = "a reservation already exists in this slot"
	ReasonChapelClosed             = "chapel closed on this date"
	ReasonInsufficientAvailability = "no sufficient availability for event duration"
	ReasonPastDate                 = "reservations cannot be made for past dates"
	ReasonPastTime                 = "reservations cannot be made for a time that has already passed"
	ReasonSlotNoLongerAvailable    = "slot no longer available"
)

// AvailabilityQuery requested interval [Start, Start+DurationMinutes)
type AvailabilityQuery struct {
	Start           types.TimeString
	DurationMinutes int
	// IgnoreReservationID excludes a reservation from the conflict check (rescheduling)
	IgnoreReservationID int64
}

// AvailabilityDecision outcome of the resolver
type AvailabilityDecision struct {
	Available bool
	Reason    string
}

func available() AvailabilityDecision {
	return AvailabilityDecision{Available: true}
}

func unavailable(reason string) AvailabilityDecision {
	return AvailabilityDecision{Available: false, Reason: reason}
}

// DayAgenda everything that decides availability of one chapel on one date.
// Rows are expected to be active ones only.
type DayAgenda struct {
	ChapelID     int64
	Date         time.Time
	General      []*GeneralSchedule
	Exceptions   []*SpecificSchedule
	Reservations []*Reservation
}

// ResolveAvailability applies the rules in priority order, the first matching rule decides:
//  1. an active reservation overlapping the requested interval rejects the slot;
//  2. a CLOSED exception for the date rejects the slot;
//  3. if OPEN exceptions exist, the interval must fit inside one of them (general schedule is ignored);
//  4. otherwise the interval must fit inside a general block of the date's weekday;
//  5. otherwise the slot is rejected.
func ResolveAvailability(agenda DayAgenda, q AvailabilityQuery) AvailabilityDecision {
	start, err := q.Start.Minutes()
	if err != nil || q.DurationMinutes <= 0 {
		return unavailable(ReasonInsufficientAvailability)
	}
	end := start + q.DurationMinutes

	if hasConflict(agenda, start, end, q.IgnoreReservationID) {
		return unavailable(ReasonSlotTaken)
	}

	var openWindows []*SpecificSchedule
	for _, ex := range agenda.Exceptions {
		if !SameDate(ex.Date, agenda.Date) {
			continue
		}
		if ex.IsClosed() {
			return unavailable(ReasonChapelClosed)
		}
		openWindows = append(openWindows, ex)
	}

	if len(openWindows) > 0 {
		for _, ex := range openWindows {
			if fits(start, end, ex.StartTime, ex.EndTime) {
				return available()
			}
		}
		return unavailable(ReasonInsufficientAvailability)
	}

	weekday := agenda.Date.Weekday()
	for _, block := range agenda.General {
		if block.Weekday() != weekday {
			continue
		}
		if fits(start, end, block.StartTime, block.EndTime) {
			return available()
		}
	}

	return unavailable(ReasonInsufficientAvailability)
}

// hasConflict проверяет пересечение [start, end) с активными бронированиями даты.
// Соседние интервалы (конец одного равен началу другого) не пересекаются.
func hasConflict(agenda DayAgenda, start, end int, ignoreID int64) bool {
	for _, r := range agenda.Reservations {
		if !r.IsActive() || !SameDate(r.EventDate, agenda.Date) {
			continue
		}
		if ignoreID != 0 && r.ID == ignoreID {
			continue
		}

		rStart, err := r.EventTime.Minutes()
		if err != nil {
			continue
		}
		rEnd := rStart + r.DurationMinutes

		if start < rEnd && rStart < end {
			return true
		}
	}
	return false
}

// fits проверяет, что [start, end] целиком лежит внутри окна [from, to]
func fits(start, end int, from, to types.TimeString) bool {
	windowStart, err := from.Minutes()
	if err != nil {
		return false
	}
	windowEnd, err := to.Minutes()
	if err != nil {
		return false
	}
	return start >= windowStart && end <= windowEnd
}

// IsPastDate returns true if date is before the calendar day of now
func IsPastDate(date, now time.Time) bool {
	return DateOnly(date).Before(DateOnly(now))
}

// IsPastSlot returns true if a slot on today's date has already started by the wall clock of now
// Other dates are judged by IsPastDate alone
func IsPastSlot(date time.Time, start types.TimeString, now time.Time) bool {
	if !SameDate(date, now) {
		return false
	}
	minutes, err := start.Minutes()
	if err != nil {
		return false
	}
	return minutes <= now.Hour()*60+now.Minute()
}

// PastReason причина отказа для прошедшей даты или уже начавшегося слота
func PastReason(date time.Time, start types.TimeString, now time.Time) (string, bool) {
	switch {
	case IsPastDate(date, now):
		return ReasonPastDate, true
	case IsPastSlot(date, start, now):
		return ReasonPastTime, true
	default:
		return "", false
	}
}

// Calendar schedule and reservations of one chapel over a date range
type Calendar struct {
	ChapelID     int64
	General      []*GeneralSchedule
	exceptions   map[string][]*SpecificSchedule
	reservations map[string][]*Reservation
}

// NewCalendar groups exceptions and reservations by date
func NewCalendar(chapelID int64, general []*GeneralSchedule, exceptions []*SpecificSchedule, reservations []*Reservation) *Calendar {
	c := &Calendar{
		ChapelID:     chapelID,
		General:      general,
		exceptions:   make(map[string][]*SpecificSchedule),
		reservations: make(map[string][]*Reservation),
	}
	for _, ex := range exceptions {
		key := ex.Date.Format(DateFormat)
		c.exceptions[key] = append(c.exceptions[key], ex)
	}
	for _, r := range reservations {
		key := r.EventDate.Format(DateFormat)
		c.reservations[key] = append(c.reservations[key], r)
	}
	return c
}

// Day returns the agenda of a single date
func (c *Calendar) Day(date time.Time) DayAgenda {
	key := date.Format(DateFormat)
	return DayAgenda{
		ChapelID:     c.ChapelID,
		Date:         date,
		General:      c.General,
		Exceptions:   c.exceptions[key],
		Reservations: c.reservations[key],
	}
}
