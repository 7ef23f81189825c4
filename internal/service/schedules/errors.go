package schedules

import "errors"

var (
	// ErrChapelNotFound возвращается, когда часовня не найдена или принадлежит другому приходу
	ErrChapelNotFound = errors.New("schedules: chapel not found")

	// ErrScheduleNotFound возвращается, когда исключение не найдено у часовни
	ErrScheduleNotFound = errors.New("schedules: schedule not found")

	// ErrScheduleConflict возвращается, когда на дату уже есть исключение другого типа
	ErrScheduleConflict = errors.New("schedules: conflicting exception on this date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedules: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedules: internal error")
)
