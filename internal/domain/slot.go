package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// AvailableSlot start time that can be booked on a date
type AvailableSlot struct {
	Date time.Time
	Time types.TimeString
}

// TimeDisplay returns the start time in 12-hour format ("09:00 AM")
func (s *AvailableSlot) TimeDisplay() string {
	return s.Time.Display()
}

// DaySlots available slots of one date, ascending by time
type DaySlots struct {
	Date  time.Time
	Slots []AvailableSlot
}

// SlotGrid returns the hourly candidate start times (06:00..21:00 inclusive)
func SlotGrid() []types.TimeString {
	grid := make([]types.TimeString, 0, SlotGridEndHour-SlotGridStartHour+1)
	for hour := SlotGridStartHour; hour <= SlotGridEndHour; hour++ {
		grid = append(grid, types.TimeString(fmt.Sprintf("%02d:00", hour)))
	}
	return grid
}

// UnavailableError a booking rejected by the availability rules
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "slot unavailable: " + e.Reason
}
