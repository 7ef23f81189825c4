package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	"github.com/m04kA/ParishReservationService/internal/domain"
	createReservation "github.com/m04kA/ParishReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody  = "invalid request body"
	msgMissingUserID       = "missing user id"
	msgInvalidParams       = "invalid request parameters"
	msgVariantNotFound     = "event variant not found"
	msgBeneficiaryRequired = "beneficiaryFullName is required"
	msgSlotNotAvailable    = "selected slot is not available"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /reservations - Validation failed: user_id=%d, %v", userID, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotNotAvailable):
			reason, ok := handlers.UnavailableReason(err)
			if !ok {
				reason = msgSlotNotAvailable
			}
			h.logger.Warn("POST /reservations - Slot not available: user_id=%d, variant_id=%d, reason=%s",
				userID, req.EventVariantID, reason)
			handlers.RespondConflict(w, reason)

		case errors.Is(err, createReservation.ErrSlotTaken):
			h.logger.Warn("POST /reservations - Slot taken concurrently: user_id=%d, variant_id=%d",
				userID, req.EventVariantID)
			handlers.RespondConflict(w, domain.ReasonSlotNoLongerAvailable)

		case errors.Is(err, createReservation.ErrVariantNotFound):
			handlers.RespondNotFound(w, msgVariantNotFound)

		case errors.Is(err, createReservation.ErrBeneficiaryRequired):
			handlers.RespondBadRequest(w, msgBeneficiaryRequired)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, variant_id=%d, error=%v",
				userID, req.EventVariantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, user_id=%d", result.ReservationID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
