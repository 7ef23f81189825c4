package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
)

var (
	// ErrNotInTransaction возвращается при попытке взять блокировку вне транзакции
	ErrNotInTransaction = errors.New("locks: advisory lock requires a transaction")

	// ErrLock возвращается при ошибке получения блокировки
	ErrLock = errors.New("locks: failed to acquire advisory lock")
)

type DBExecutor = dbmetrics.DBExecutor

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Locker транзакционные advisory-блокировки PostgreSQL
type Locker struct {
	db DBExecutor
}

// NewLocker создает новый экземпляр Locker
func NewLocker(db DBExecutor) *Locker {
	return &Locker{db: db}
}

// LockChapelDate берет pg_advisory_xact_lock по ключу (часовня, день)
// Блокировка держится до COMMIT/ROLLBACK транзакции из контекста
func (l *Locker) LockChapelDate(ctx context.Context, chapelID int64, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}

	executor := dbmetrics.GetExecutor(ctx, l.db)
	classID, objectID := chapelDateKey(chapelID, date)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", classID, objectID); err != nil {
		return fmt.Errorf("%w: chapel=%d date=%s: %w", ErrLock, chapelID, date.Format("2006-01-02"), err)
	}
	return nil
}

// chapelDateKey двухкомпонентный ключ блокировки: (id часовни, номер дня от эпохи)
func chapelDateKey(chapelID int64, date time.Time) (int32, int32) {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int32(chapelID), int32(day.Sub(epoch).Hours() / 24)
}
