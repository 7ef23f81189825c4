package get_available_slots

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// dailyDates возвращает все даты периода [from, to] по правилу FREQ=DAILY
func dailyDates(from, to time.Time) ([]time.Time, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: domain.DateOnly(from),
		Until:   domain.DateOnly(to),
	})
	if err != nil {
		return nil, fmt.Errorf("build daily rule: %w", err)
	}
	return rule.All(), nil
}

// enumerateSlots проверяет каждый шаг сетки каждой даты тем же правилом, что и бронирование
// Даты без свободных слотов в результат не попадают
func enumerateSlots(calendar *domain.Calendar, dates []time.Time, durationMinutes int) []domain.DaySlots {
	grid := domain.SlotGrid()
	days := make([]domain.DaySlots, 0, len(dates))

	for _, date := range dates {
		agenda := calendar.Day(date)

		slots := make([]domain.AvailableSlot, 0)
		for _, tick := range grid {
			decision := domain.ResolveAvailability(agenda, domain.AvailabilityQuery{
				Start:           tick,
				DurationMinutes: durationMinutes,
			})
			if decision.Available {
				slots = append(slots, domain.AvailableSlot{Date: date, Time: tick})
			}
		}

		if len(slots) > 0 {
			days = append(days, domain.DaySlots{Date: date, Slots: slots})
		}
	}

	return days
}

// dropStartedSlots убирает слоты сегодняшнего дня, которые уже начались
// Если от дня ничего не осталось, день не возвращается
func dropStartedSlots(days []domain.DaySlots, now time.Time) []domain.DaySlots {
	result := make([]domain.DaySlots, 0, len(days))
	for _, day := range days {
		if !domain.SameDate(day.Date, now) {
			result = append(result, day)
			continue
		}

		slots := make([]domain.AvailableSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			if !domain.IsPastSlot(day.Date, slot.Time, now) {
				slots = append(slots, slot)
			}
		}
		if len(slots) > 0 {
			result = append(result, domain.DaySlots{Date: day.Date, Slots: slots})
		}
	}
	return result
}
