package list_user_reservations

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	"github.com/m04kA/ParishReservationService/internal/service/reservations"
	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

const (
	msgMissingUserID = "missing user id"
	msgInvalidParams = "invalid request parameters"
)

type listFunc func(ctx context.Context, req *models.ListUserReservationsRequest) (*models.ReservationListResponse, error)

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

// Pending GET /api/v1/reservations/pending?page=&limit=&search=
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "GET /reservations/pending", h.service.ListPending)
}

// History GET /api/v1/reservations/history?page=&limit=&search=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "GET /reservations/history", h.service.ListHistory)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, list listFunc) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	page, err := handlers.QueryInt(r, "page")
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}
	limit, err := handlers.QueryInt(r, "limit")
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := list(r.Context(), &models.ListUserReservationsRequest{
		UserID: userID,
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("%s - Invalid parameters: %v", route, err)
			handlers.RespondBadRequest(w, handlers.ErrorDetail(err, reservations.ErrInvalidInput, msgInvalidParams))
			return
		}
		h.logger.Error("%s - Failed to list reservations: user_id=%d, error=%v", route, userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s - Reservations retrieved: user_id=%d, count=%d, total=%d",
		route, userID, len(result.Reservations), result.Meta.TotalRecords)
	handlers.RespondJSON(w, http.StatusOK, result)
}
