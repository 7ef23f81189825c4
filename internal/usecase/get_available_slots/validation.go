package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.EventVariantID <= 0 {
		return fmt.Errorf("%w: eventVariantId must be positive", ErrInvalidInput)
	}

	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	if req.EndDate.IsZero() {
		return fmt.Errorf("%w: endDate is required", ErrInvalidInput)
	}

	return nil
}

// validateRange проверяет период: начало не позже конца, не длиннее MaxSlotRangeDays
// и хотя бы один день не в прошлом
func validateRange(start, end, now time.Time) error {
	start, end = domain.DateOnly(start), domain.DateOnly(end)

	if start.After(end) {
		return fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidDateRange)
	}

	if end.Sub(start) > time.Duration(domain.MaxSlotRangeDays)*24*time.Hour {
		return fmt.Errorf("%w: range cannot exceed %d days", ErrRangeTooLarge, domain.MaxSlotRangeDays)
	}

	if domain.IsPastDate(end, now) {
		return fmt.Errorf("%w: range is entirely in the past", ErrInvalidDateRange)
	}

	return nil
}
