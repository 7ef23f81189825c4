package eventbus

import (
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// EventType тип события жизненного цикла бронирования
type EventType string

const (
	EventReservationCreated       EventType = "reservation.created"
	EventReservationCancelled     EventType = "reservation.cancelled"
	EventReservationStatusChanged EventType = "reservation.status_changed"
)

// ReservationEvent сообщение, публикуемое после фиксации транзакции
type ReservationEvent struct {
	Type           EventType `json:"type"`
	ReservationID  int64     `json:"reservationId"`
	UserID         int64     `json:"userId"`
	ChapelID       int64     `json:"chapelId"`
	EventVariantID int64     `json:"eventVariantId"`
	EventDate      string    `json:"eventDate"`
	EventTime      string    `json:"eventTime"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// NewReservationEvent собирает событие из бронирования
func NewReservationEvent(eventType EventType, r *domain.Reservation, previous domain.ReservationStatus, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:           eventType,
		ReservationID:  r.ID,
		UserID:         r.UserID,
		ChapelID:       r.ChapelID,
		EventVariantID: r.EventVariantID,
		EventDate:      r.EventDate.Format(domain.DateFormat),
		EventTime:      r.EventTime.String(),
		Status:         string(r.Status),
		PreviousStatus: string(previous),
		OccurredAt:     at.UTC(),
	}
}
