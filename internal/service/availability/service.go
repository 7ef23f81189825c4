package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// ErrLoadAgenda возвращается, когда не удалось загрузить расписание или бронирования
var ErrLoadAgenda = errors.New("availability: failed to load agenda")

// Service собирает данные, по которым принимается решение о доступности.
// Само решение принимает domain.ResolveAvailability.
type Service struct {
	scheduleRepo    ScheduleRepository
	reservationRepo ReservationRepository
}

// NewService создает новый экземпляр сервиса
func NewService(scheduleRepo ScheduleRepository, reservationRepo ReservationRepository) *Service {
	return &Service{
		scheduleRepo:    scheduleRepo,
		reservationRepo: reservationRepo,
	}
}

// Day загружает расписание и бронирования часовни на одну дату.
// Внутри транзакции бронирования даты читаются с блокировкой.
func (s *Service) Day(ctx context.Context, chapelID int64, date time.Time) (domain.DayAgenda, error) {
	date = domain.DateOnly(date)

	calendar, err := s.Range(ctx, chapelID, date, date)
	if err != nil {
		return domain.DayAgenda{}, err
	}

	return calendar.Day(date), nil
}

// Range загружает расписание и бронирования часовни за период: по одному запросу на таблицу
func (s *Service) Range(ctx context.Context, chapelID int64, from, to time.Time) (*domain.Calendar, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)

	general, err := s.scheduleRepo.ListGeneral(ctx, chapelID)
	if err != nil {
		return nil, fmt.Errorf("%w: general schedule of chapel=%d: %w", ErrLoadAgenda, chapelID, err)
	}

	exceptions, err := s.scheduleRepo.ListSpecificInRange(ctx, chapelID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: exceptions of chapel=%d: %w", ErrLoadAgenda, chapelID, err)
	}

	reservations, err := s.reservationRepo.ListActiveByChapel(ctx, chapelID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: reservations of chapel=%d: %w", ErrLoadAgenda, chapelID, err)
	}

	return domain.NewCalendar(chapelID, general, exceptions, reservations), nil
}
