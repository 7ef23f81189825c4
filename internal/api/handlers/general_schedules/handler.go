package general_schedules

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	"github.com/m04kA/ParishReservationService/internal/service/schedules"
)

const (
	msgInvalidChapelID    = "invalid chapel id"
	msgInvalidRequestBody = "invalid request body"
	msgInvalidParams      = "invalid request parameters"
	msgChapelNotFound     = "chapel not found"
	msgParishRequired     = "parish administrator access required"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/chapels/{chapelId}/general-schedules
// Публичный endpoint - без авторизации
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	chapelID, err := handlers.PathID(r, "chapelId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidChapelID)
		return
	}

	result, err := h.service.ListGeneral(r.Context(), chapelID)
	if err != nil {
		if errors.Is(err, schedules.ErrChapelNotFound) {
			handlers.RespondNotFound(w, msgChapelNotFound)
			return
		}
		h.logger.Error("GET /chapels/{id}/general-schedules - Failed to list schedules: chapel_id=%d, error=%v", chapelID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Replace PUT /api/v1/admin/chapels/{chapelId}/general-schedules
// Заменяет недельное расписание целиком
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	chapelID, err := handlers.PathID(r, "chapelId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidChapelID)
		return
	}

	parishID, ok := middleware.GetParishID(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgParishRequired)
		return
	}

	var req ReplaceGeneralRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/chapels/{id}/general-schedules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	serviceReq, err := req.ToServiceRequest(parishID, chapelID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ReplaceGeneral(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrChapelNotFound):
			handlers.RespondNotFound(w, msgChapelNotFound)

		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("PUT /admin/chapels/{id}/general-schedules - Invalid schedule: chapel_id=%d, %v", chapelID, err)
			handlers.RespondBadRequest(w, handlers.ErrorDetail(err, schedules.ErrInvalidInput, msgInvalidParams))

		default:
			h.logger.Error("PUT /admin/chapels/{id}/general-schedules - Failed to replace schedule: chapel_id=%d, error=%v",
				chapelID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/chapels/{id}/general-schedules - Schedule replaced: chapel_id=%d, blocks=%d",
		chapelID, len(result.Schedules))
	handlers.RespondJSON(w, http.StatusOK, result)
}
