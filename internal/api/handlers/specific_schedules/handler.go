package specific_schedules

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	"github.com/m04kA/ParishReservationService/internal/service/schedules"
)

const (
	msgInvalidChapelID    = "invalid chapel id"
	msgInvalidScheduleID  = "invalid schedule id"
	msgInvalidRequestBody = "invalid request body"
	msgInvalidParams      = "invalid request parameters"
	msgChapelNotFound     = "chapel not found"
	msgScheduleNotFound   = "schedule exception not found"
	msgScheduleConflict   = "an exception of the other type already exists on this date"
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

// List GET /api/v1/admin/chapels/{chapelId}/specific-schedules
// Query params: exceptionType, startDate, endDate, page, limit (опционально)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	parishID, chapelID, ok := h.scope(w, r)
	if !ok {
		return
	}

	req, err := ToListRequest(parishID, chapelID, r)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ListSpecific(r.Context(), req)
	if err != nil {
		h.respondError(w, "GET /admin/chapels/{id}/specific-schedules", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/admin/chapels/{chapelId}/specific-schedules
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	parishID, chapelID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var body SpecificScheduleRequest
	if !h.decode(w, r, &body) {
		return
	}

	req, err := body.ToServiceRequest(parishID, chapelID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.CreateSpecific(r.Context(), req)
	if err != nil {
		h.respondError(w, "POST /admin/chapels/{id}/specific-schedules", err)
		return
	}

	h.logger.Info("POST /admin/chapels/{id}/specific-schedules - Exception created: id=%d, chapel_id=%d, date=%s",
		result.ID, chapelID, result.Date)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update PUT /api/v1/admin/chapels/{chapelId}/specific-schedules/{scheduleId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	parishID, chapelID, ok := h.scope(w, r)
	if !ok {
		return
	}

	scheduleID, err := handlers.PathID(r, "scheduleId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	var body SpecificScheduleRequest
	if !h.decode(w, r, &body) {
		return
	}

	req, err := body.ToServiceRequest(parishID, chapelID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.UpdateSpecific(r.Context(), scheduleID, req)
	if err != nil {
		h.respondError(w, "PUT /admin/chapels/{id}/specific-schedules/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/admin/chapels/{chapelId}/specific-schedules/{scheduleId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	parishID, chapelID, ok := h.scope(w, r)
	if !ok {
		return
	}

	scheduleID, err := handlers.PathID(r, "scheduleId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	if err := h.service.DeleteSpecific(r.Context(), parishID, chapelID, scheduleID); err != nil {
		h.respondError(w, "DELETE /admin/chapels/{id}/specific-schedules/{id}", err)
		return
	}

	h.logger.Info("DELETE /admin/chapels/{id}/specific-schedules/{id} - Exception deleted: id=%d, chapel_id=%d",
		scheduleID, chapelID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (parishID, chapelID int64, ok bool) {
	parishID, ok = middleware.GetParishID(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgParishRequired)
		return 0, 0, false
	}

	chapelID, err := handlers.PathID(r, "chapelId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidChapelID)
		return 0, 0, false
	}
	return parishID, chapelID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, body *SpecificScheduleRequest) bool {
	if err := handlers.DecodeJSON(r, body); err != nil {
		h.logger.Warn("%s %s - Invalid request body: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return false
	}
	if err := handlers.Validate(body); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, schedules.ErrChapelNotFound):
		handlers.RespondNotFound(w, msgChapelNotFound)

	case errors.Is(err, schedules.ErrScheduleNotFound):
		handlers.RespondNotFound(w, msgScheduleNotFound)

	case errors.Is(err, schedules.ErrScheduleConflict):
		h.logger.Warn("%s - Conflict: %v", route, err)
		handlers.RespondConflict(w, msgScheduleConflict)

	case errors.Is(err, schedules.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, handlers.ErrorDetail(err, schedules.ErrInvalidInput, msgInvalidParams))

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
