package check_availability

import (
	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	checkAvailability "github.com/m04kA/ParishReservationService/internal/usecase/check_availability"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// AvailabilityQuery query параметры запроса
type AvailabilityQuery struct {
	Date string `json:"date" validate:"required,date"`
	Time string `json:"time" validate:"required,hhmm"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует query в модель use case
func (q *AvailabilityQuery) ToUseCaseRequest(variantID int64) (*checkAvailability.Request, error) {
	date, err := handlers.ParseDate(q.Date)
	if err != nil {
		return nil, err
	}
	at, err := types.ParseTimeString(q.Time)
	if err != nil {
		return nil, err
	}
	return &checkAvailability.Request{EventVariantID: variantID, Date: date, Time: at}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{Available: resp.Available, Reason: resp.Reason}
}
