package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено (или вне прихода администратора)
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому пользователю
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrCannotCancel возвращается, когда бронирование нельзя отменить в текущем статусе
	ErrCannotCancel = errors.New("reservations: cannot be cancelled in current state")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = errors.New("reservations: invalid status transition")

	// ErrImmutable возвращается при попытке изменить бронирование в конечном статусе
	ErrImmutable = errors.New("reservations: reservation is in a terminal state")

	// ErrSlotNotAvailable возвращается, когда новое время бронирования недоступно
	ErrSlotNotAvailable = errors.New("reservations: slot not available")

	// ErrSlotTaken возвращается, когда слот занят параллельной транзакцией
	ErrSlotTaken = errors.New("reservations: slot no longer available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
