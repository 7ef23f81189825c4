package availability

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// ScheduleRepository чтение расписаний часовни
type ScheduleRepository interface {
	ListGeneral(ctx context.Context, chapelID int64) ([]*domain.GeneralSchedule, error)
	ListSpecificInRange(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.SpecificSchedule, error)
}

// ReservationRepository чтение активных бронирований часовни
type ReservationRepository interface {
	ListActiveByChapel(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.Reservation, error)
}
