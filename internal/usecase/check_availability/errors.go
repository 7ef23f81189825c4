package check_availability

import "errors"

var (
	// ErrVariantNotFound возвращается, когда вариант события не найден или неактивен
	ErrVariantNotFound = errors.New("check_availability: event variant not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
