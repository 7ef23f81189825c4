package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
)

// CatalogRepository интерфейс чтения каталога
type CatalogRepository interface {
	GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error)
	ListActiveBaseRequirements(ctx context.Context, eventID int64) ([]*domain.RequirementSource, error)
	ListActiveChapelRequirements(ctx context.Context, chapelEventID int64) ([]*domain.RequirementSource, error)
}

// ProfileRepository интерфейс чтения персональных данных
type ProfileRepository interface {
	GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	CreateMentions(ctx context.Context, reservationID int64, mentions []domain.ReservationMention) error
	CreateRequirements(ctx context.Context, reservationID int64, requirements []domain.ReservationRequirement) error
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

// Metrics бизнес-метрики бронирования
type Metrics interface {
	IncReservationCreated()
	IncBookingConflict(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
