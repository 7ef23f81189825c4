package person

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
	// ErrProfileNotFound возвращается, когда у пользователя нет профиля
	ErrProfileNotFound = errors.New("person.repository: profile not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("person.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("person.repository: failed to scan row")
)

type DBExecutor = dbmetrics.DBExecutor

// Repository чтение персональных данных пользователей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetProfileByUserID получает ФИО пользователя
func (r *Repository) GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("u.id", "p.first_names", "p.paternal_surname", "p.maternal_surname").
		From("users u").
		Join("person p ON p.id = u.person_id").
		Where(squirrel.Eq{"u.id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfileByUserID - build select query: %v", ErrBuildQuery, err)
	}

	var profile domain.Profile
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&profile.UserID,
		&profile.FirstNames,
		&profile.PaternalSurname,
		&profile.MaternalSurname,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfileByUserID - scan profile: %w", ErrScanRow, err)
	}

	return &profile, nil
}
