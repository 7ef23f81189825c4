package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/integrity"
	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
	"github.com/m04kA/ParishReservationService/pkg/psqlbuilder"
)

// joinedColumns бронирование вместе с данными каталога
var joinedColumns = []string{
	"r.id",
	"r.user_id",
	"r.event_variant_id",
	"r.chapel_id",
	"r.event_date",
	"r.event_time",
	"r.duration_minutes",
	"r.status",
	"r.beneficiary_full_name",
	"r.paid_amount",
	"r.reschedule_date",
	"e.name",
	"ev.name",
	"c.name",
	"c.parish_id",
	"ev.current_price",
	"r.created_at",
	"r.updated_at",
}

// slotColumns минимальный набор колонок для проверки пересечений
var slotColumns = []string{
	"id",
	"user_id",
	"event_variant_id",
	"chapel_id",
	"event_date",
	"event_time",
	"duration_minutes",
	"status",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func joinedSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(joinedColumns...).
		From("reservation r").
		Join("event_variant ev ON ev.id = r.event_variant_id").
		Join("chapel_event ce ON ce.id = ev.chapel_event_id").
		Join("event e ON e.id = ce.event_id").
		Join("chapel c ON c.id = r.chapel_id")
}

// Create создает бронирование
// Если в контексте есть транзакция, запрос выполняется в ней.
// Пересечение с активным бронированием, пойманное ограничением БД, возвращается как ErrSlotTaken
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservation").
		Columns(
			"user_id",
			"event_variant_id",
			"chapel_id",
			"event_date",
			"event_time",
			"duration_minutes",
			"status",
			"beneficiary_full_name",
			"paid_amount",
		).
		Values(
			res.UserID,
			res.EventVariantID,
			res.ChapelID,
			res.EventDate,
			res.EventTime,
			res.DurationMinutes,
			res.Status,
			res.BeneficiaryFullName,
			res.PaidAmount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		translated := integrity.Translate(err)
		if errors.Is(translated, integrity.ErrExclusionViolation) {
			return nil, fmt.Errorf("%w: Create: %w", ErrSlotTaken, translated)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, translated)
	}

	return res, nil
}

// CreateMentions сохраняет упоминания бронирования одним запросом
func (r *Repository) CreateMentions(ctx context.Context, reservationID int64, mentions []domain.ReservationMention) error {
	if len(mentions) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("reservation_mention").
		Columns("reservation_id", "mention_type_id", "mention_name")
	for _, m := range mentions {
		insert = insert.Values(reservationID, m.MentionTypeID, m.MentionName)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateMentions - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateMentions - execute insert: %w", ErrExecQuery, integrity.Translate(err))
	}

	return nil
}

// CreateRequirements сохраняет снимок требований на момент бронирования
func (r *Repository) CreateRequirements(ctx context.Context, reservationID int64, requirements []domain.ReservationRequirement) error {
	if len(requirements) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("reservation_requirement").
		Columns("reservation_id", "base_requirement_id", "chapel_requirement_id", "name", "description", "completed")
	for _, req := range requirements {
		insert = insert.Values(reservationID, req.BaseRequirementID, req.ChapelRequirementID, req.Name, req.Description, req.Completed)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateRequirements - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateRequirements - execute insert: %w", ErrExecQuery, integrity.Translate(err))
	}

	return nil
}

// GetByID получает бронирование по ID вместе с данными каталога
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, "GetByID", joinedSelect().Where(squirrel.Eq{"r.id": id}))
}

// GetForUpdate получает бронирование и блокирует строку до конца транзакции
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	builder := joinedSelect().Where(squirrel.Eq{"r.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF r")
	}
	return r.getOne(ctx, "GetForUpdate", builder)
}

func (r *Repository) getOne(ctx context.Context, op string, builder squirrel.SelectBuilder) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	reservations, err := scanJoined(rows)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrReservationNotFound
	}

	return reservations[0], nil
}

// ListActiveByChapel получает активные бронирования часовни за период (включительно)
// Внутри транзакции и для одной даты строки блокируются FOR UPDATE
func (r *Repository) ListActiveByChapel(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From("reservation").
		Where(squirrel.Eq{"chapel_id": chapelID}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		Where(squirrel.GtOrEq{"event_date": from}).
		Where(squirrel.LtOrEq{"event_date": to}).
		OrderBy("event_date ASC", "event_time ASC")

	if dbmetrics.IsInTransaction(ctx) && domain.SameDate(from, to) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByChapel - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByChapel - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.EventVariantID,
			&res.ChapelID,
			&res.EventDate,
			&res.EventTime,
			&res.DurationMinutes,
			&res.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveByChapel - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveByChapel - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

// ListByUser получает бронирования пользователя в заданных статусах
// Возвращает страницу и общее количество записей
func (r *Repository) ListByUser(ctx context.Context, filter domain.UserReservationsFilter) ([]*domain.Reservation, int, error) {
	where := squirrel.And{squirrel.Eq{"r.user_id": filter.UserID}}
	if len(filter.Statuses) > 0 {
		where = append(where, squirrel.Eq{"r.status": statusStrings(filter.Statuses)})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, squirrel.Like{"LOWER(e.name)": likePattern(search)})
	}

	orderBy := []string{"r.event_date DESC", "r.created_at DESC"}
	if filter.PendingOrder {
		orderBy = []string{"r.event_date ASC", "r.created_at DESC"}
	}

	return r.listPage(ctx, "ListByUser", where, orderBy, filter.Pagination)
}

// ListByParish получает бронирования всех часовен прихода с фильтрами
// Поиск идет по названию события и имени получателя
func (r *Repository) ListByParish(ctx context.Context, filter domain.ParishReservationsFilter) ([]*domain.Reservation, int, error) {
	where := squirrel.And{squirrel.Eq{"c.parish_id": filter.ParishID}}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"r.status": string(*filter.Status)})
	}
	if filter.StartDate != nil {
		where = append(where, squirrel.GtOrEq{"r.event_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, squirrel.LtOrEq{"r.event_date": *filter.EndDate})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		where = append(where, squirrel.Or{
			squirrel.Like{"LOWER(e.name)": pattern},
			squirrel.Like{"LOWER(r.beneficiary_full_name)": pattern},
		})
	}

	orderBy := []string{"r.event_date DESC", "r.event_time DESC"}

	return r.listPage(ctx, "ListByParish", where, orderBy, filter.Pagination)
}

func (r *Repository) listPage(
	ctx context.Context,
	op string,
	where squirrel.Sqlizer,
	orderBy []string,
	page domain.Pagination,
) ([]*domain.Reservation, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	countQuery, countArgs, err := psqlbuilder.Select("COUNT(*)").
		From("reservation r").
		Join("event_variant ev ON ev.id = r.event_variant_id").
		Join("chapel_event ce ON ce.id = ev.chapel_event_id").
		Join("event e ON e.id = ce.event_id").
		Join("chapel c ON c.id = r.chapel_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s - build count query: %v", ErrBuildQuery, op, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: %s - scan count: %w", ErrScanRow, op, err)
	}

	query, args, err := joinedSelect().
		Where(where).
		OrderBy(orderBy...).
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	reservations, err := scanJoined(rows)
	if err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// ListRequirements получает снимок требований бронирования
func (r *Repository) ListRequirements(ctx context.Context, reservationID int64) ([]domain.ReservationRequirement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "reservation_id", "base_requirement_id", "chapel_requirement_id", "name", "description", "completed",
	).
		From("reservation_requirement").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListRequirements - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRequirements - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	requirements := make([]domain.ReservationRequirement, 0)
	for rows.Next() {
		var (
			req      domain.ReservationRequirement
			baseID   sql.NullInt64
			chapelID sql.NullInt64
		)
		err := rows.Scan(&req.ID, &req.ReservationID, &baseID, &chapelID, &req.Name, &req.Description, &req.Completed)
		if err != nil {
			return nil, fmt.Errorf("%w: ListRequirements - scan row: %w", ErrScanRow, err)
		}
		if baseID.Valid {
			req.BaseRequirementID = &baseID.Int64
		}
		if chapelID.Valid {
			req.ChapelRequirementID = &chapelID.Int64
		}
		requirements = append(requirements, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRequirements - rows error: %w", ErrScanRow, err)
	}

	return requirements, nil
}

// ListMentions получает упоминания бронирования
func (r *Repository) ListMentions(ctx context.Context, reservationID int64) ([]domain.ReservationMention, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "reservation_id", "mention_type_id", "mention_name").
		From("reservation_mention").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListMentions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListMentions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	mentions := make([]domain.ReservationMention, 0)
	for rows.Next() {
		var m domain.ReservationMention
		if err := rows.Scan(&m.ID, &m.ReservationID, &m.MentionTypeID, &m.MentionName); err != nil {
			return nil, fmt.Errorf("%w: ListMentions - scan row: %w", ErrScanRow, err)
		}
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListMentions - rows error: %w", ErrScanRow, err)
	}

	return mentions, nil
}

// Update частично обновляет бронирование, nil-поля патча не меняются
func (r *Repository) Update(ctx context.Context, id int64, patch domain.ReservationPatch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	p := psqlbuilder.NewPatch()
	psqlbuilder.SetIfNotNil(p, "status", patch.Status)
	psqlbuilder.SetIfNotNil(p, "event_date", patch.EventDate)
	psqlbuilder.SetIfNotNil(p, "event_time", patch.EventTime)
	psqlbuilder.SetIfNotNil(p, "paid_amount", patch.PaidAmount)
	psqlbuilder.SetIfNotNil(p, "reschedule_date", patch.RescheduleDate)
	p.Set("updated_at", squirrel.Expr("NOW()"))

	update, err := psqlbuilder.UpdateWithPatch("reservation", p)
	if err != nil {
		return fmt.Errorf("%w: Update - build patch: %v", ErrBuildQuery, err)
	}

	query, args, err := update.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		translated := integrity.Translate(err)
		if errors.Is(translated, integrity.ErrExclusionViolation) {
			return fmt.Errorf("%w: Update: %w", ErrSlotTaken, translated)
		}
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, translated)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// scanJoined сканирует результаты запроса joinedSelect
func scanJoined(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		var (
			res            domain.Reservation
			rescheduleDate sql.NullTime
		)
		err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.EventVariantID,
			&res.ChapelID,
			&res.EventDate,
			&res.EventTime,
			&res.DurationMinutes,
			&res.Status,
			&res.BeneficiaryFullName,
			&res.PaidAmount,
			&rescheduleDate,
			&res.EventName,
			&res.VariantName,
			&res.ChapelName,
			&res.ParishID,
			&res.VariantPrice,
			&res.CreatedAt,
			&res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanJoined - scan row: %w", ErrScanRow, err)
		}
		if rescheduleDate.Valid {
			res.RescheduleDate = &rescheduleDate.Time
		}
		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanJoined - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

func inactiveStatusStrings() []string {
	return statusStrings(domain.InactiveStatuses)
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

// likePattern экранирует спецсимволы LIKE и приводит строку к нижнему регистру
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(replacer.Replace(search)) + "%"
}
