package reservations

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByUser(ctx context.Context, filter domain.UserReservationsFilter) ([]*domain.Reservation, int, error)
	ListByParish(ctx context.Context, filter domain.ParishReservationsFilter) ([]*domain.Reservation, int, error)
	ListRequirements(ctx context.Context, reservationID int64) ([]domain.ReservationRequirement, error)
	ListMentions(ctx context.Context, reservationID int64) ([]domain.ReservationMention, error)
	Update(ctx context.Context, id int64, patch domain.ReservationPatch) error
}

// AgendaLoader загружает расписание и бронирования часовни на дату
type AgendaLoader interface {
	Day(ctx context.Context, chapelID int64, date time.Time) (domain.DayAgenda, error)
}

// Locker блокировка пары (часовня, дата) на время транзакции
type Locker interface {
	LockChapelDate(ctx context.Context, chapelID int64, date time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache сброс кэша слотов часовни
type SlotCache interface {
	Invalidate(ctx context.Context, chapelID int64) error
}

// EventPublisher публикация событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.ReservationEvent) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
