package get_available_slots

import "errors"

var (
	// ErrVariantNotFound возвращается, когда вариант события не найден или неактивен
	ErrVariantNotFound = errors.New("get_available_slots: event variant not found")

	// ErrInvalidDateRange возвращается, когда начало периода позже конца или период целиком в прошлом
	ErrInvalidDateRange = errors.New("get_available_slots: invalid date range")

	// ErrRangeTooLarge возвращается, когда период длиннее допустимого
	ErrRangeTooLarge = errors.New("get_available_slots: date range too large")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
