package list_parish_reservations

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	ListForParish(ctx context.Context, req *models.ListParishReservationsRequest) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
