package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда исключение не найдено у часовни
	ErrScheduleNotFound = errors.New("schedule.repository: schedule not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")

	// ErrNotInTransaction возвращается, когда замена расписания вызвана без транзакции
	ErrNotInTransaction = errors.New("schedule.repository: replace requires a transaction")
)
