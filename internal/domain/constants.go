package domain

// Slot grid used by the available slots enumerator
const (
	SlotGridStartHour = 6  // 06:00
	SlotGridEndHour   = 21 // 21:00, inclusive
	MaxSlotRangeDays  = 90
)

// Pagination defaults
const (
	DefaultPage               = 1
	DefaultReservationsLimit  = 10
	DefaultSpecificSchedLimit = 4
	MaxPageLimit              = 100
)

// Business validation constants
const (
	MaxBeneficiaryNameLength = 200
	MaxMentionNameLength     = 200
	MaxExceptionReasonLength = 500
	MaxSearchLength          = 100
)

// Time format constants
const (
	TimeFormat        = "15:04"      // HH:MM
	DateFormat        = "2006-01-02" // YYYY-MM-DD
	DisplayDateFormat = "02/01/2006" // DD/MM/YYYY
)

// InactiveStatuses reservations in these statuses never block a slot
var InactiveStatuses = []ReservationStatus{
	StatusCancelled,
	StatusRejected,
}

// PendingStatuses reservations shown in the user's "pending" listing
var PendingStatuses = []ReservationStatus{
	StatusReserved,
	StatusInProgress,
}

// HistoryStatuses reservations shown in the user's "history" listing
var HistoryStatuses = []ReservationStatus{
	StatusCompleted,
	StatusFulfilled,
	StatusCancelled,
	StatusRejected,
}
