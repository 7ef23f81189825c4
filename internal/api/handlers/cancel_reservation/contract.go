package cancel_reservation

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	Cancel(ctx context.Context, userID, reservationID int64) (*models.CancelResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
