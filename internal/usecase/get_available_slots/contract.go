package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// CatalogRepository интерфейс чтения вариантов событий
type CatalogRepository interface {
	GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error)
}

// AgendaLoader загружает расписание и бронирования часовни за период
type AgendaLoader interface {
	Range(ctx context.Context, chapelID int64, from, to time.Time) (*domain.Calendar, error)
}

// SlotCache кэш рассчитанных слотов
type SlotCache interface {
	Key(ctx context.Context, chapelID, variantID int64, from, to time.Time) (string, error)
	Get(ctx context.Context, key string) ([]domain.DaySlots, bool, error)
	Set(ctx context.Context, key string, days []domain.DaySlots) error
}

// CacheObserver учет попаданий в кэш
type CacheObserver interface {
	IncSlotCache(hit bool)
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
