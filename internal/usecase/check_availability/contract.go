package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// CatalogRepository интерфейс чтения вариантов событий
type CatalogRepository interface {
	GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error)
}

// AgendaLoader загружает расписание и бронирования часовни на дату
type AgendaLoader interface {
	Day(ctx context.Context, chapelID int64, date time.Time) (domain.DayAgenda, error)
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
