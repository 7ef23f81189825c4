package get_reservation

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	GetDetails(ctx context.Context, userID, reservationID int64) (*models.ReservationDetailsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
