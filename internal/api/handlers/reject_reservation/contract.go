package reject_reservation

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	Reject(ctx context.Context, parishID, reservationID int64) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
