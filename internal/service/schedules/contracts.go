package schedules

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	ListGeneral(ctx context.Context, chapelID int64) ([]*domain.GeneralSchedule, error)
	ReplaceGeneral(ctx context.Context, chapelID int64, schedules []*domain.GeneralSchedule) ([]*domain.GeneralSchedule, error)
	ListSpecific(ctx context.Context, filter domain.SpecificScheduleFilter) ([]*domain.SpecificSchedule, int, error)
	ListSpecificInRange(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.SpecificSchedule, error)
	GetSpecific(ctx context.Context, chapelID, id int64) (*domain.SpecificSchedule, error)
	CreateSpecific(ctx context.Context, s *domain.SpecificSchedule) (*domain.SpecificSchedule, error)
	UpdateSpecific(ctx context.Context, s *domain.SpecificSchedule) (*domain.SpecificSchedule, error)
	DeleteSpecific(ctx context.Context, chapelID, id int64) error
}

// ChapelRepository чтение часовен для проверки принадлежности приходу
type ChapelRepository interface {
	GetChapel(ctx context.Context, id int64) (*domain.Chapel, error)
}

// Locker блокировка пары (часовня, дата) на время транзакции
type Locker interface {
	LockChapelDate(ctx context.Context, chapelID int64, date time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache сброс кэша слотов часовни
type SlotCache interface {
	Invalidate(ctx context.Context, chapelID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
