package catalog

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// CatalogRepository интерфейс чтения вариантов событий
type CatalogRepository interface {
	GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error)
	ListActiveBaseRequirements(ctx context.Context, eventID int64) ([]*domain.RequirementSource, error)
	ListActiveChapelRequirements(ctx context.Context, chapelEventID int64) ([]*domain.RequirementSource, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
