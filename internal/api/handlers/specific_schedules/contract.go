package specific_schedules

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
)

type ScheduleService interface {
	ListSpecific(ctx context.Context, req *models.ListSpecificRequest) (*models.SpecificScheduleListResponse, error)
	CreateSpecific(ctx context.Context, req *models.SpecificRequest) (*models.SpecificScheduleResponse, error)
	UpdateSpecific(ctx context.Context, id int64, req *models.SpecificRequest) (*models.SpecificScheduleResponse, error)
	DeleteSpecific(ctx context.Context, parishID, chapelID, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
