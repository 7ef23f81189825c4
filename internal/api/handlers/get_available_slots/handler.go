package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/ParishReservationService/internal/usecase/get_available_slots"
)

const (
	msgInvalidVariantID = "invalid event variant id"
	msgInvalidParams    = "invalid request parameters"
	msgVariantNotFound  = "event variant not found"
	msgInvalidDateRange = "startDate must not be after endDate and the range must not be entirely in the past"
	msgRangeTooLarge    = "date range cannot exceed 90 days"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/event-variants/{variantId}/available-slots
// Query params: startDate, endDate (YYYY-MM-DD, включительно)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	variantID, err := handlers.PathID(r, "variantId")
	if err != nil {
		h.logger.Warn("GET /event-variants/{id}/available-slots - Invalid variant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVariantID)
		return
	}

	query := SlotsQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := handlers.Validate(&query); err != nil {
		h.logger.Warn("GET /event-variants/{id}/available-slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	useCaseReq, err := query.ToUseCaseRequest(variantID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrVariantNotFound):
			h.logger.Warn("GET /event-variants/{id}/available-slots - Variant not found: variant_id=%d", variantID)
			handlers.RespondNotFound(w, msgVariantNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDateRange):
			h.logger.Warn("GET /event-variants/{id}/available-slots - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailableSlots.ErrRangeTooLarge):
			h.logger.Warn("GET /event-variants/{id}/available-slots - Range too large: %v", err)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /event-variants/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /event-variants/{id}/available-slots - Failed to get slots: variant_id=%d, error=%v",
				variantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /event-variants/{id}/available-slots - Slots retrieved: variant_id=%d, dates=%d, slots=%d, cached=%t",
		variantID, len(result.AvailableDates), result.TotalSlots, result.Cached)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
