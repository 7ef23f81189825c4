package check_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	checkAvailability "github.com/m04kA/ParishReservationService/internal/usecase/check_availability"
)

const (
	msgInvalidVariantID = "invalid event variant id"
	msgVariantNotFound  = "event variant not found"
	msgInvalidParams    = "invalid request parameters"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/event-variants/{variantId}/availability
// Query params: date (YYYY-MM-DD), time (HH:MM)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	variantID, err := handlers.PathID(r, "variantId")
	if err != nil {
		h.logger.Warn("GET /event-variants/{id}/availability - Invalid variant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVariantID)
		return
	}

	query := AvailabilityQuery{
		Date: r.URL.Query().Get("date"),
		Time: r.URL.Query().Get("time"),
	}
	if err := handlers.Validate(&query); err != nil {
		h.logger.Warn("GET /event-variants/{id}/availability - Invalid query: %v", err)
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
		case errors.Is(err, checkAvailability.ErrVariantNotFound):
			h.logger.Warn("GET /event-variants/{id}/availability - Variant not found: variant_id=%d", variantID)
			handlers.RespondNotFound(w, msgVariantNotFound)

		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /event-variants/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /event-variants/{id}/availability - Failed to check availability: variant_id=%d, error=%v",
				variantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
