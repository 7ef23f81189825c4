package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
	"github.com/m04kA/ParishReservationService/pkg/psqlbuilder"
)

var (
	// ErrVariantNotFound возвращается, когда вариант события не найден
	ErrVariantNotFound = errors.New("catalog.repository: event variant not found")

	// ErrChapelNotFound возвращается, когда часовня не найдена
	ErrChapelNotFound = errors.New("catalog.repository: chapel not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("catalog.repository: failed to scan row")
)

type DBExecutor = dbmetrics.DBExecutor

// Repository чтение справочников (часовни, события, варианты, требования)
// Сами справочники редактируются другим сервисом
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetEventVariant получает вариант события вместе с часовней, приходом и событием
// Флаги активности возвращаются как есть, решение о доступности принимает вызывающий код
func (r *Repository) GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"ev.id",
		"ev.chapel_event_id",
		"ce.event_id",
		"ce.chapel_id",
		"c.parish_id",
		"ev.name",
		"ev.description",
		"ev.current_price",
		"ev.max_capacity",
		"ev.duration_minutes",
		"e.name",
		"e.description",
		"c.name",
		"p.name",
		"p.primary_color",
		"p.secondary_color",
		"ev.active",
		"ce.active",
		"c.active",
	).
		From("event_variant ev").
		Join("chapel_event ce ON ce.id = ev.chapel_event_id").
		Join("event e ON e.id = ce.event_id").
		Join("chapel c ON c.id = ce.chapel_id").
		Join("parish p ON p.id = c.parish_id").
		Where(squirrel.Eq{"ev.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetEventVariant - build select query: %v", ErrBuildQuery, err)
	}

	var v domain.EventVariant
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.ChapelEventID,
		&v.EventID,
		&v.ChapelID,
		&v.ParishID,
		&v.Name,
		&v.Description,
		&v.Price,
		&v.MaxCapacity,
		&v.DurationMinutes,
		&v.EventName,
		&v.EventDescription,
		&v.ChapelName,
		&v.ParishName,
		&v.PrimaryColor,
		&v.SecondaryColor,
		&v.Active,
		&v.ChapelEventActive,
		&v.ChapelActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEventVariant - scan variant: %w", ErrScanRow, err)
	}

	return &v, nil
}

// GetChapel получает часовню по ID
func (r *Repository) GetChapel(ctx context.Context, id int64) (*domain.Chapel, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "parish_id", "name", "is_base", "active").
		From("chapel").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetChapel - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Chapel
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.ParishID, &c.Name, &c.IsBase, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChapelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetChapel - scan chapel: %w", ErrScanRow, err)
	}

	return &c, nil
}

// ListActiveBaseRequirements активные базовые требования типа события
func (r *Repository) ListActiveBaseRequirements(ctx context.Context, eventID int64) ([]*domain.RequirementSource, error) {
	return r.listRequirements(ctx, "base_requirement", "event_id", eventID, domain.RequirementBase)
}

// ListActiveChapelRequirements активные требования конкретной часовни для события
func (r *Repository) ListActiveChapelRequirements(ctx context.Context, chapelEventID int64) ([]*domain.RequirementSource, error) {
	return r.listRequirements(ctx, "chapel_event_requirement", "chapel_event_id", chapelEventID, domain.RequirementChapel)
}

func (r *Repository) listRequirements(
	ctx context.Context,
	table string,
	ownerColumn string,
	ownerID int64,
	kind domain.RequirementKind,
) ([]*domain.RequirementSource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "description").
		From(table).
		Where(squirrel.Eq{ownerColumn: ownerID, "active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listRequirements(%s) - build select query: %v", ErrBuildQuery, table, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listRequirements(%s) - execute query: %w", ErrExecQuery, table, err)
	}
	defer rows.Close()

	requirements := make([]*domain.RequirementSource, 0)
	for rows.Next() {
		req := &domain.RequirementSource{Kind: kind}
		if err := rows.Scan(&req.ID, &req.Name, &req.Description); err != nil {
			return nil, fmt.Errorf("%w: listRequirements(%s) - scan row: %w", ErrScanRow, table, err)
		}
		requirements = append(requirements, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listRequirements(%s) - rows error: %w", ErrScanRow, table, err)
	}

	return requirements, nil
}
