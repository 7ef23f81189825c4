package integrity

import (
	"errors"

	"github.com/m04kA/ParishReservationService/pkg/pgerrors"
)

var (
	ErrUniqueViolation     = errors.New("integrity: unique violation")
	ErrForeignKeyViolation = errors.New("integrity: foreign key violation")
	ErrNotNullViolation    = errors.New("integrity: not null violation")
	ErrCheckViolation      = errors.New("integrity: check violation")
	ErrExclusionViolation  = errors.New("integrity: exclusion violation")
)

// Error нарушение ограничения БД с сообщением, которое можно показать клиенту
// Имя ограничения наружу не отдается, только Message
type Error struct {
	Kind       error
	Constraint string
	Message    string
	cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.cause}
}

var constraintMessages = map[string]string{
	"uk_general_schedule_block":        "a schedule block for this day and start time already exists",
	"chk_general_schedule_day":         "day of week must be between 0 (Sunday) and 6 (Saturday)",
	"chk_general_schedule_range":       "schedule end time must be after start time",
	"fk_general_schedule_chapel":       "chapel does not exist",
	"chk_specific_schedule_type":       "exception type must be OPEN or CLOSED",
	"chk_specific_schedule_open_range": "an OPEN exception needs a start and an end time, end after start",
	"fk_specific_schedule_chapel":      "chapel does not exist",
	"fk_reservation_user":              "user does not exist",
	"fk_reservation_event_variant":     "event variant does not exist",
	"fk_reservation_chapel":            "chapel does not exist",
	"chk_reservation_status":           "invalid reservation status",
	"chk_reservation_paid_amount":      "paid amount cannot be negative",
	"ex_reservation_chapel_slot":       "slot no longer available",
	"fk_reservation_mention_type":      "mention type does not exist",
}

var codeKinds = map[string]error{
	pgerrors.CodeUniqueViolation:     ErrUniqueViolation,
	pgerrors.CodeForeignKeyViolation: ErrForeignKeyViolation,
	pgerrors.CodeNotNullViolation:    ErrNotNullViolation,
	pgerrors.CodeCheckViolation:      ErrCheckViolation,
	pgerrors.CodeExclusionViolation:  ErrExclusionViolation,
}

var defaultMessages = map[error]string{
	ErrUniqueViolation:     "record already exists",
	ErrForeignKeyViolation: "referenced record does not exist",
	ErrNotNullViolation:    "required field is missing",
	ErrCheckViolation:      "value violates a data rule",
	ErrExclusionViolation:  "record overlaps an existing one",
}

// Translate превращает ошибку целостности PostgreSQL в *Error
// Остальные ошибки возвращаются без изменений
func Translate(err error) error {
	if err == nil {
		return nil
	}

	kind, ok := codeKinds[pgerrors.Code(err)]
	if !ok {
		return err
	}

	constraint := pgerrors.Constraint(err)
	message, ok := constraintMessages[constraint]
	if !ok {
		message = defaultMessages[kind]
	}

	return &Error{
		Kind:       kind,
		Constraint: constraint,
		Message:    message,
		cause:      err,
	}
}

// MessageOf возвращает сообщение для клиента, если в цепочке есть *Error
func MessageOf(err error) (string, bool) {
	var integrityErr *Error
	if errors.As(err, &integrityErr) {
		return integrityErr.Message, true
	}
	return "", false
}
