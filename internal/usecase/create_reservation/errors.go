package create_reservation

import "errors"

var (
	// ErrVariantNotFound возвращается, когда вариант события не найден или неактивен
	ErrVariantNotFound = errors.New("create_reservation: event variant not found")

	// ErrSlotNotAvailable возвращается, когда правила доступности отклонили слот
	// Причина доступна через errors.As(err, *domain.UnavailableError)
	ErrSlotNotAvailable = errors.New("create_reservation: slot is not available")

	// ErrSlotTaken возвращается, когда слот заняли параллельно (конфликт сериализации или ограничение БД)
	ErrSlotTaken = errors.New("create_reservation: slot no longer available")

	// ErrBeneficiaryRequired возвращается, когда имя получателя не передано и у пользователя нет профиля
	ErrBeneficiaryRequired = errors.New("create_reservation: beneficiary full name is required")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
