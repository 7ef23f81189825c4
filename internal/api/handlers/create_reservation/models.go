package create_reservation

import (
	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/domain"
	createReservation "github.com/m04kA/ParishReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	EventVariantID      int64            `json:"eventVariantId" validate:"required,gt=0"`
	Date                string           `json:"date" validate:"required,date"` // "2026-10-19"
	Time                string           `json:"time" validate:"required,hhmm"` // "09:00"
	BeneficiaryFullName *string          `json:"beneficiaryFullName,omitempty" validate:"omitempty,max=200"`
	Mentions            []MentionRequest `json:"mentions,omitempty" validate:"omitempty,max=20,dive"`
}

// MentionRequest упоминание в бронировании
type MentionRequest struct {
	MentionTypeID int64  `json:"mentionTypeId" validate:"required,gt=0"`
	MentionName   string `json:"mentionName" validate:"required,max=200"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ReservationID       int64  `json:"reservationId"`
	Status              string `json:"status"`
	BeneficiaryFullName string `json:"beneficiaryFullName"`
	EventDate           string `json:"eventDate"`
	EventTime           string `json:"eventTime"`
	ConfirmationMessage string `json:"confirmationMessage"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	at, err := types.ParseTimeString(r.Time)
	if err != nil {
		return nil, err
	}

	mentions := make([]createReservation.Mention, 0, len(r.Mentions))
	for _, m := range r.Mentions {
		mentions = append(mentions, createReservation.Mention{
			MentionTypeID: m.MentionTypeID,
			MentionName:   m.MentionName,
		})
	}

	return &createReservation.Request{
		UserID:              userID,
		EventVariantID:      r.EventVariantID,
		Date:                date,
		Time:                at,
		BeneficiaryFullName: r.BeneficiaryFullName,
		Mentions:            mentions,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ReservationID:       resp.ReservationID,
		Status:              resp.Status,
		BeneficiaryFullName: resp.BeneficiaryFullName,
		EventDate:           resp.EventDate.Format(domain.DateFormat),
		EventTime:           resp.EventTime.String(),
		ConfirmationMessage: resp.ConfirmationMessage,
	}
}
