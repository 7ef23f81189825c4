package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusReserved   ReservationStatus = "RESERVED"
	StatusInProgress ReservationStatus = "IN_PROGRESS"
	StatusCompleted  ReservationStatus = "COMPLETED"
	StatusFulfilled  ReservationStatus = "FULFILLED"
	StatusCancelled  ReservationStatus = "CANCELLED"
	StatusRejected   ReservationStatus = "REJECTED"
)

// allowedTransitions administrative state machine
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusReserved:   {StatusInProgress, StatusCancelled, StatusRejected, StatusCompleted},
	StatusInProgress: {StatusCompleted, StatusFulfilled, StatusCancelled},
}

// ParseReservationStatus converts a string to a known status
func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusReserved, StatusInProgress, StatusCompleted, StatusFulfilled, StatusCancelled, StatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
}

// IsTerminal returns true if no further transitions are possible
func (s ReservationStatus) IsTerminal() bool {
	_, ok := allowedTransitions[s]
	return !ok
}

// CanTransitionTo returns true if the administrative transition s -> next is allowed
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation represents an accepted booking of an event variant
type Reservation struct {
	ID                  int64
	UserID              int64
	EventVariantID      int64
	ChapelID            int64 // денормализовано из варианта на момент бронирования
	EventDate           time.Time
	EventTime           types.TimeString
	DurationMinutes     int // денормализовано из варианта на момент бронирования
	Status              ReservationStatus
	BeneficiaryFullName string
	PaidAmount          float64
	RescheduleDate      *time.Time

	// Read-only data joined from the catalog
	EventName    string
	VariantName  string
	ChapelName   string
	ParishID     int64
	VariantPrice float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation occupies its time slot
func (r *Reservation) IsActive() bool {
	for _, s := range InactiveStatuses {
		if r.Status == s {
			return false
		}
	}
	return true
}

// CanBeCancelledByOwner returns true if the owner may still cancel the reservation
func (r *Reservation) CanBeCancelledByOwner() bool {
	return r.Status == StatusReserved || r.Status == StatusInProgress
}

// IsPaid returns true if the paid amount covers the variant price
func (r *Reservation) IsPaid() bool {
	return r.PaidAmount >= r.VariantPrice
}

// PaymentStatus derived payment state of a reservation
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentPending PaymentStatus = "PENDING"
)

// PaymentStatus returns PAID when the paid amount covers the price
func (r *Reservation) PaymentStatus() PaymentStatus {
	if r.IsPaid() {
		return PaymentPaid
	}
	return PaymentPending
}

// ReservationRequirement frozen copy of a requirement taken at booking time
type ReservationRequirement struct {
	ID                  int64
	ReservationID       int64
	BaseRequirementID   *int64
	ChapelRequirementID *int64
	Name                string
	Description         string
	Completed           bool
}

// ReservationMention commemorative entry attached to a reservation
type ReservationMention struct {
	ID            int64
	ReservationID int64
	MentionTypeID int64
	MentionName   string
}

// ReservationPatch partial update of a reservation; nil fields are left unchanged
type ReservationPatch struct {
	Status         *ReservationStatus
	EventDate      *time.Time
	EventTime      *types.TimeString
	PaidAmount     *float64
	RescheduleDate *time.Time
}

// IsEmpty returns true if the patch changes nothing
func (p ReservationPatch) IsEmpty() bool {
	return p.Status == nil && p.EventDate == nil && p.EventTime == nil &&
		p.PaidAmount == nil && p.RescheduleDate == nil
}

// ChangesSlot returns true if the patch moves the reservation in time
func (p ReservationPatch) ChangesSlot() bool {
	return p.EventDate != nil || p.EventTime != nil
}

// UserReservationsFilter фильтр для списков бронирований пользователя
type UserReservationsFilter struct {
	UserID   int64
	Statuses []ReservationStatus
	Search   string // поиск по названию события (без учета регистра)
	// PendingOrder: event_date ASC, created_at DESC; иначе event_date DESC
	PendingOrder bool
	Pagination
}

// ParishReservationsFilter фильтр для административного списка бронирований прихода
type ParishReservationsFilter struct {
	ParishID  int64
	Status    *ReservationStatus
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Pagination
}
