package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/integrity"
	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
	"github.com/m04kA/ParishReservationService/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var specificColumns = []string{
	"id",
	"chapel_id",
	"date",
	"start_time",
	"end_time",
	"exception_type",
	"reason",
	"active",
	"created_at",
	"updated_at",
}

// Repository хранилище общего (недельного) расписания и исключений по датам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListGeneral получает активные блоки недельного расписания часовни
// Сортировка: день недели, время начала
func (r *Repository) ListGeneral(ctx context.Context, chapelID int64) ([]*domain.GeneralSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "chapel_id", "day_of_week", "start_time", "end_time", "active").
		From("general_schedule").
		Where(squirrel.Eq{"chapel_id": chapelID, "active": true}).
		OrderBy("day_of_week ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListGeneral - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListGeneral - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make([]*domain.GeneralSchedule, 0)
	for rows.Next() {
		var g domain.GeneralSchedule
		if err := rows.Scan(&g.ID, &g.ChapelID, &g.DayOfWeek, &g.StartTime, &g.EndTime, &g.Active); err != nil {
			return nil, fmt.Errorf("%w: ListGeneral - scan row: %w", ErrScanRow, err)
		}
		schedules = append(schedules, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListGeneral - rows error: %w", ErrScanRow, err)
	}

	return schedules, nil
}

// ReplaceGeneral полностью заменяет недельное расписание часовни (DELETE + INSERT)
// Должен вызываться внутри транзакции, чтобы читатели не увидели пустое расписание
func (r *Repository) ReplaceGeneral(ctx context.Context, chapelID int64, schedules []*domain.GeneralSchedule) ([]*domain.GeneralSchedule, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("general_schedule").
		Where(squirrel.Eq{"chapel_id": chapelID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ReplaceGeneral - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("%w: ReplaceGeneral - execute delete: %w", ErrExecQuery, err)
	}

	if len(schedules) == 0 {
		return []*domain.GeneralSchedule{}, nil
	}

	insert := psqlbuilder.Insert("general_schedule").
		Columns("chapel_id", "day_of_week", "start_time", "end_time", "active")
	for _, s := range schedules {
		insert = insert.Values(chapelID, s.DayOfWeek, s.StartTime, s.EndTime, true)
	}

	insertQuery, insertArgs, err := insert.
		Suffix("RETURNING id, chapel_id, day_of_week, start_time, end_time, active").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ReplaceGeneral - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReplaceGeneral - execute insert: %w", ErrExecQuery, integrity.Translate(err))
	}
	defer rows.Close()

	created := make([]*domain.GeneralSchedule, 0, len(schedules))
	for rows.Next() {
		var g domain.GeneralSchedule
		if err := rows.Scan(&g.ID, &g.ChapelID, &g.DayOfWeek, &g.StartTime, &g.EndTime, &g.Active); err != nil {
			return nil, fmt.Errorf("%w: ReplaceGeneral - scan row: %w", ErrScanRow, err)
		}
		created = append(created, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ReplaceGeneral - rows error: %w", ErrScanRow, integrity.Translate(err))
	}

	return created, nil
}

// ListSpecific получает исключения часовни с фильтрами и пагинацией
// Возвращает страницу и общее количество записей. Сортировка: дата по убыванию
func (r *Repository) ListSpecific(ctx context.Context, filter domain.SpecificScheduleFilter) ([]*domain.SpecificSchedule, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	where := squirrel.And{squirrel.Eq{"chapel_id": filter.ChapelID, "active": true}}
	if filter.ExceptionType != nil {
		where = append(where, squirrel.Eq{"exception_type": *filter.ExceptionType})
	}
	if filter.StartDate != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.EndDate})
	}

	countQuery, countArgs, err := psqlbuilder.Select("COUNT(*)").
		From("specific_schedule").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListSpecific - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: ListSpecific - scan count: %w", ErrScanRow, err)
	}

	query, args, err := psqlbuilder.Select(specificColumns...).
		From("specific_schedule").
		Where(where).
		OrderBy("date DESC", "start_time ASC NULLS FIRST").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListSpecific - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListSpecific - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules, err := scanSpecific(rows)
	if err != nil {
		return nil, 0, err
	}

	return schedules, total, nil
}

// ListSpecificInRange получает активные исключения часовни за период (включительно)
func (r *Repository) ListSpecificInRange(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.SpecificSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(specificColumns...).
		From("specific_schedule").
		Where(squirrel.Eq{"chapel_id": chapelID, "active": true}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecificInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecificInRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSpecific(rows)
}

// GetSpecific получает исключение по ID в рамках часовни
func (r *Repository) GetSpecific(ctx context.Context, chapelID, id int64) (*domain.SpecificSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(specificColumns...).
		From("specific_schedule").
		Where(squirrel.Eq{"id": id, "chapel_id": chapelID, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecific - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecific - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules, err := scanSpecific(rows)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrScheduleNotFound
	}

	return schedules[0], nil
}

// CreateSpecific создает исключение
func (r *Repository) CreateSpecific(ctx context.Context, s *domain.SpecificSchedule) (*domain.SpecificSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("specific_schedule").
		Columns("chapel_id", "date", "start_time", "end_time", "exception_type", "reason", "active").
		Values(s.ChapelID, s.Date, s.StartTime, s.EndTime, s.ExceptionType, s.Reason, true).
		Suffix("RETURNING id, active, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateSpecific - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateSpecific - execute insert: %w", ErrExecQuery, integrity.Translate(err))
	}

	return s, nil
}

// UpdateSpecific обновляет исключение, найденное по паре (id, chapel_id)
func (r *Repository) UpdateSpecific(ctx context.Context, s *domain.SpecificSchedule) (*domain.SpecificSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("specific_schedule").
		Set("date", s.Date).
		Set("start_time", s.StartTime).
		Set("end_time", s.EndTime).
		Set("exception_type", s.ExceptionType).
		Set("reason", s.Reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID, "chapel_id": s.ChapelID, "active": true}).
		Suffix("RETURNING active, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateSpecific - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateSpecific - execute update: %w", ErrExecQuery, integrity.Translate(err))
	}

	return s, nil
}

// DeleteSpecific удаляет исключение, найденное по паре (id, chapel_id)
func (r *Repository) DeleteSpecific(ctx context.Context, chapelID, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("specific_schedule").
		Where(squirrel.Eq{"id": id, "chapel_id": chapelID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecific - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecific - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecific - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

// scanSpecific сканирует результаты запроса в слайс исключений
func scanSpecific(rows *sql.Rows) ([]*domain.SpecificSchedule, error) {
	schedules := make([]*domain.SpecificSchedule, 0)

	for rows.Next() {
		var s domain.SpecificSchedule
		err := rows.Scan(
			&s.ID,
			&s.ChapelID,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.ExceptionType,
			&s.Reason,
			&s.Active,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSpecific - scan row: %w", ErrScanRow, err)
		}
		schedules = append(schedules, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSpecific - rows error: %w", ErrScanRow, err)
	}

	return schedules, nil
}
