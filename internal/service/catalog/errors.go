package catalog

import "errors"

var (
	// ErrVariantNotFound возвращается, когда вариант события не найден или неактивен
	ErrVariantNotFound = errors.New("catalog: event variant not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("catalog: internal error")
)
