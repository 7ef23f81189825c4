package get_form_info

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/service/catalog"
)

const (
	msgInvalidVariantID = "invalid event variant id"
	msgVariantNotFound  = "event variant not found"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/event-variants/{variantId}/form-info
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	variantID, err := handlers.PathID(r, "variantId")
	if err != nil {
		h.logger.Warn("GET /event-variants/{id}/form-info - Invalid variant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVariantID)
		return
	}

	result, err := h.service.GetFormInfo(r.Context(), variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			handlers.RespondNotFound(w, msgVariantNotFound)
			return
		}
		h.logger.Error("GET /event-variants/{id}/form-info - Failed to get form info: variant_id=%d, error=%v", variantID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
