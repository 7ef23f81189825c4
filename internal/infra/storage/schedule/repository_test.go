package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/integrity"
	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

func newMock(t *testing.T) (*dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return dbmetrics.Wrap(db, nil), mock
}

func TestListGeneral(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT id, chapel_id, day_of_week, start_time, end_time, active FROM general_schedule ` +
		`WHERE active = \$1 AND chapel_id = \$2 ORDER BY day_of_week ASC, start_time ASC`).
		WithArgs(true, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chapel_id", "day_of_week", "start_time", "end_time", "active"}).
			AddRow(1, 4, 1, "08:00:00", "12:00:00", true).
			AddRow(2, 4, 3, "16:00:00", "19:00:00", true))

	schedules, err := NewRepository(db).ListGeneral(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, types.TimeString("08:00"), schedules[0].StartTime)
	assert.Equal(t, 3, schedules[1].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGeneral(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM general_schedule WHERE chapel_id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery(`INSERT INTO general_schedule \(chapel_id,day_of_week,start_time,end_time,active\) ` +
		`VALUES \(\$1,\$2,\$3,\$4,\$5\),\(\$6,\$7,\$8,\$9,\$10\) RETURNING id`).
		WithArgs(int64(4), 0, types.TimeString("07:00"), types.TimeString("09:00"), true,
			int64(4), 6, types.TimeString("18:00"), types.TimeString("20:00"), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chapel_id", "day_of_week", "start_time", "end_time", "active"}).
			AddRow(10, 4, 0, "07:00:00", "09:00:00", true).
			AddRow(11, 4, 6, "18:00:00", "20:00:00", true))
	mock.ExpectCommit()

	var created []*domain.GeneralSchedule
	err := txmanager.NewTransactionManager(db).Do(context.Background(), func(ctx context.Context) error {
		var err error
		created, err = repo.ReplaceGeneral(ctx, 4, []*domain.GeneralSchedule{
			{DayOfWeek: 0, StartTime: "07:00", EndTime: "09:00"},
			{DayOfWeek: 6, StartTime: "18:00", EndTime: "20:00"},
		})
		return err
	})

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(11), created[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGeneral_RequiresTransaction(t *testing.T) {
	db, mock := newMock(t)

	_, err := NewRepository(db).ReplaceGeneral(context.Background(), 4, nil)
	assert.ErrorIs(t, err, ErrNotInTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGeneral_TranslatesIntegrityErrors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM general_schedule`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO general_schedule`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "fk_general_schedule_chapel"})
	mock.ExpectRollback()

	err := txmanager.NewTransactionManager(db).Do(context.Background(), func(ctx context.Context) error {
		_, err := repo.ReplaceGeneral(ctx, 99, []*domain.GeneralSchedule{{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"}})
		return err
	})

	assert.ErrorIs(t, err, ErrExecQuery)
	message, ok := integrity.MessageOf(err)
	assert.True(t, ok)
	assert.Equal(t, "chapel does not exist", message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSpecific(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectExec(`DELETE FROM specific_schedule WHERE chapel_id = \$1 AND id = \$2`).
		WithArgs(int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM specific_schedule WHERE chapel_id = \$1 AND id = \$2`).
		WithArgs(int64(5), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteSpecific(context.Background(), 4, 7))
	assert.ErrorIs(t, repo.DeleteSpecific(context.Background(), 5, 7), ErrScheduleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSpecificInRange_ScansClosedRows(t *testing.T) {
	db, mock := newMock(t)
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM specific_schedule`).
		WillReturnRows(sqlmock.NewRows(specificColumns).
			AddRow(3, 4, day, nil, nil, "CLOSED", "All Souls", true, day, day))

	rows, err := NewRepository(db).ListSpecificInRange(context.Background(), 4, day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsClosed())
	assert.True(t, rows[0].StartTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
