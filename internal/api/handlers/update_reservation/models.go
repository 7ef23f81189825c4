package update_reservation

import (
	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// UpdateReservationRequest HTTP request model; все поля необязательны
type UpdateReservationRequest struct {
	Status     *string  `json:"status,omitempty" validate:"omitempty,oneof=RESERVED IN_PROGRESS COMPLETED FULFILLED CANCELLED REJECTED"`
	EventDate  *string  `json:"eventDate,omitempty" validate:"omitempty,date"`
	EventTime  *string  `json:"eventTime,omitempty" validate:"omitempty,hhmm"`
	PaidAmount *float64 `json:"paidAmount,omitempty" validate:"omitempty,gte=0"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateReservationRequest) ToServiceRequest() (*models.AdminUpdateRequest, error) {
	req := &models.AdminUpdateRequest{
		Status:     r.Status,
		PaidAmount: r.PaidAmount,
	}

	if r.EventDate != nil {
		date, err := handlers.ParseDate(*r.EventDate)
		if err != nil {
			return nil, err
		}
		req.EventDate = &date
	}

	if r.EventTime != nil {
		at, err := types.ParseTimeString(*r.EventTime)
		if err != nil {
			return nil, err
		}
		req.EventTime = &at
	}

	return req, nil
}
