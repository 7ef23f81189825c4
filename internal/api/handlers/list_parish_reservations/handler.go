package list_parish_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	"github.com/m04kA/ParishReservationService/internal/service/reservations"
)

const (
	msgParishRequired = "parish administrator access required"
	msgInvalidParams  = "invalid request parameters"
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

// Handle GET /api/v1/admin/reservations
// Query params: status, startDate, endDate, search, page, limit (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	parishID, ok := middleware.GetParishID(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgParishRequired)
		return
	}

	serviceReq, err := ToServiceRequest(parishID, r)
	if err != nil {
		h.logger.Warn("GET /admin/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ListForParish(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("GET /admin/reservations - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, handlers.ErrorDetail(err, reservations.ErrInvalidInput, msgInvalidParams))
			return
		}
		h.logger.Error("GET /admin/reservations - Failed to list reservations: parish_id=%d, error=%v", parishID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /admin/reservations - Reservations retrieved: parish_id=%d, count=%d, total=%d",
		parishID, len(result.Reservations), result.Meta.TotalRecords)
	handlers.RespondJSON(w, http.StatusOK, result)
}
