package reject_reservation

import (
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	updateReservation "github.com/m04kA/ParishReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
)

const (
	msgInvalidReservationID = "invalid reservation id"
	msgParishRequired       = "parish administrator access required"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/reservations/{reservationId}/reject
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	parishID, ok := middleware.GetParishID(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgParishRequired)
		return
	}

	result, err := h.service.Reject(r.Context(), parishID, reservationID)
	if err != nil {
		if updateReservation.RespondAdminError(w, err) {
			h.logger.Warn("PATCH /admin/reservations/{id}/reject - Rejected: reservation_id=%d, error=%v", reservationID, err)
			return
		}
		h.logger.Error("PATCH /admin/reservations/{id}/reject - Failed to reject reservation: reservation_id=%d, error=%v",
			reservationID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /admin/reservations/{id}/reject - Reservation rejected: reservation_id=%d, parish_id=%d",
		reservationID, parishID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
