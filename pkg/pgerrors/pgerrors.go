package pgerrors

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые обрабатывает сервис
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeNotNullViolation     = "23502"
	CodeCheckViolation       = "23514"
	CodeExclusionViolation   = "23P01"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// As извлекает *pq.Error из цепочки ошибок
func As(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// Code возвращает SQLSTATE код или пустую строку
func Code(err error) string {
	if pqErr, ok := As(err); ok {
		return string(pqErr.Code)
	}
	return ""
}

// Constraint возвращает имя нарушенного ограничения
func Constraint(err error) string {
	if pqErr, ok := As(err); ok {
		return pqErr.Constraint
	}
	return ""
}

// IsRetryable проверяет, что транзакцию можно безопасно повторить
func IsRetryable(err error) bool {
	switch Code(err) {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return true
	default:
		return false
	}
}

// IsUniqueViolation проверяет нарушение уникальности
func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}

// IsExclusionViolation проверяет нарушение EXCLUDE ограничения
func IsExclusionViolation(err error) bool {
	return Code(err) == CodeExclusionViolation
}

// IsIntegrityViolation проверяет нарушение любого ограничения целостности (класс 23)
func IsIntegrityViolation(err error) bool {
	code := Code(err)
	return len(code) == 5 && code[:2] == "23"
}
