package update_reservation

import (
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
)

const (
	msgInvalidReservationID = "invalid reservation id"
	msgInvalidRequestBody   = "invalid request body"
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

// Handle PATCH /api/v1/admin/reservations/{reservationId}
// Body: status, eventDate, eventTime, paidAmount (все необязательны)
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

	var req UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.AdminUpdate(r.Context(), parishID, reservationID, serviceReq)
	if err != nil {
		if RespondAdminError(w, err) {
			h.logger.Warn("PATCH /admin/reservations/{id} - Rejected: reservation_id=%d, parish_id=%d, error=%v",
				reservationID, parishID, err)
			return
		}
		h.logger.Error("PATCH /admin/reservations/{id} - Failed to update reservation: reservation_id=%d, error=%v",
			reservationID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /admin/reservations/{id} - Reservation updated: reservation_id=%d, status=%s",
		reservationID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
