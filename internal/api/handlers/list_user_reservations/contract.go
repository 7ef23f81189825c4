package list_user_reservations

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	ListPending(ctx context.Context, req *models.ListUserReservationsRequest) (*models.ReservationListResponse, error)
	ListHistory(ctx context.Context, req *models.ListUserReservationsRequest) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
