package general_schedules

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
)

type ScheduleService interface {
	ListGeneral(ctx context.Context, chapelID int64) (*models.GeneralScheduleListResponse, error)
	ReplaceGeneral(ctx context.Context, req *models.ReplaceGeneralRequest) (*models.GeneralScheduleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
