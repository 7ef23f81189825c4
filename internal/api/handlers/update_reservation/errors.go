package update_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/service/reservations"
)

const (
	msgNotFound          = "reservation not found"
	msgImmutable         = "reservation can no longer be modified"
	msgInvalidTransition = "status transition not allowed"
	msgSlotNotAvailable  = "selected slot is not available"
	msgInvalidParams     = "invalid request parameters"
)

// RespondAdminError отображает ошибки административного изменения бронирования в HTTP
// Возвращает false для неизвестных ошибок, их обрабатывает вызывающий
func RespondAdminError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, reservations.ErrReservationNotFound):
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, reservations.ErrImmutable):
		handlers.RespondConflict(w, msgImmutable)

	case errors.Is(err, reservations.ErrInvalidTransition):
		handlers.RespondConflict(w, msgInvalidTransition)

	case errors.Is(err, reservations.ErrSlotTaken):
		handlers.RespondConflict(w, domain.ReasonSlotNoLongerAvailable)

	case errors.Is(err, reservations.ErrSlotNotAvailable):
		reason, ok := handlers.UnavailableReason(err)
		if !ok {
			reason = msgSlotNotAvailable
		}
		handlers.RespondConflict(w, reason)

	case errors.Is(err, reservations.ErrInvalidInput):
		handlers.RespondBadRequest(w, handlers.ErrorDetail(err, reservations.ErrInvalidInput, msgInvalidParams))

	default:
		return false
	}
	return true
}
