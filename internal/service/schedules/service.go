package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/ParishReservationService/internal/domain"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/integrity"
	scheduleRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/schedule"
	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
)

// Service сервис для работы с расписаниями часовен
type Service struct {
	scheduleRepo ScheduleRepository
	chapelRepo   ChapelRepository
	locker       Locker
	txManager    TransactionManager
	cache        SlotCache
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	chapelRepo ChapelRepository,
	locker Locker,
	txManager TransactionManager,
	cache SlotCache,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		chapelRepo:   chapelRepo,
		locker:       locker,
		txManager:    txManager,
		cache:        cache,
		logger:       logger,
	}
}

// ListGeneral активное недельное расписание часовни
// Публичный метод, часовня должна быть активной
func (s *Service) ListGeneral(ctx context.Context, chapelID int64) (*models.GeneralScheduleListResponse, error) {
	s.logger.Info("ListGeneral: chapel=%d", chapelID)

	chapel, err := s.getChapel(ctx, "ListGeneral", chapelID)
	if err != nil {
		return nil, err
	}
	if !chapel.Active {
		return nil, ErrChapelNotFound
	}

	schedules, err := s.scheduleRepo.ListGeneral(ctx, chapelID)
	if err != nil {
		s.logger.Error("ListGeneral: repository error for chapel=%d: %v", chapelID, err)
		return nil, fmt.Errorf("%w: ListGeneral - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainGeneralList(schedules), nil
}

// ReplaceGeneral заменяет недельное расписание часовни целиком в одной транзакции
func (s *Service) ReplaceGeneral(ctx context.Context, req *models.ReplaceGeneralRequest) (*models.GeneralScheduleListResponse, error) {
	s.logger.Info("ReplaceGeneral: chapel=%d, parish=%d, %d blocks", req.ChapelID, req.ParishID, len(req.Blocks))

	schedules, err := req.ToDomainSchedules()
	if err != nil {
		s.logger.Warn("ReplaceGeneral: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkParish(ctx, "ReplaceGeneral", req.ParishID, req.ChapelID); err != nil {
		return nil, err
	}

	var created []*domain.GeneralSchedule
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.scheduleRepo.ReplaceGeneral(txCtx, req.ChapelID, schedules)
		return err
	})
	if err != nil {
		return nil, s.mapRepoError("ReplaceGeneral", err)
	}

	s.logger.Info("ReplaceGeneral: chapel=%d now has %d blocks", req.ChapelID, len(created))
	s.invalidate(ctx, req.ChapelID)

	return models.FromDomainGeneralList(created), nil
}

// ListSpecific исключения часовни, новые даты первыми
func (s *Service) ListSpecific(ctx context.Context, req *models.ListSpecificRequest) (*models.SpecificScheduleListResponse, error) {
	s.logger.Info("ListSpecific: chapel=%d, parish=%d, page=%d", req.ChapelID, req.ParishID, req.Page)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListSpecific: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkParish(ctx, "ListSpecific", req.ParishID, req.ChapelID); err != nil {
		return nil, err
	}

	schedules, total, err := s.scheduleRepo.ListSpecific(ctx, filter)
	if err != nil {
		s.logger.Error("ListSpecific: repository error for chapel=%d: %v", req.ChapelID, err)
		return nil, fmt.Errorf("%w: ListSpecific - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSpecificList(schedules, domain.NewPageMeta(total, filter.Pagination)), nil
}

// CreateSpecific создает исключение
// OPEN и CLOSED на одну дату взаимоисключающие, проверка идет под блокировкой даты
func (s *Service) CreateSpecific(ctx context.Context, req *models.SpecificRequest) (*models.SpecificScheduleResponse, error) {
	s.logger.Info("CreateSpecific: chapel=%d, date=%s, type=%s", req.ChapelID, req.Date.Format(domain.DateFormat), req.ExceptionType)

	exception, err := req.ToDomainSpecific()
	if err != nil {
		s.logger.Warn("CreateSpecific: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkParish(ctx, "CreateSpecific", req.ParishID, req.ChapelID); err != nil {
		return nil, err
	}

	var created *domain.SpecificSchedule
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.guardConflict(txCtx, exception); err != nil {
			return err
		}

		var err error
		created, err = s.scheduleRepo.CreateSpecific(txCtx, exception)
		return err
	})
	if err != nil {
		return nil, s.mapRepoError("CreateSpecific", err)
	}

	s.logger.Info("CreateSpecific: created exception id=%d for chapel=%d", created.ID, created.ChapelID)
	s.invalidate(ctx, created.ChapelID)

	return models.FromDomainSpecific(created), nil
}

// UpdateSpecific изменяет исключение часовни
func (s *Service) UpdateSpecific(ctx context.Context, id int64, req *models.SpecificRequest) (*models.SpecificScheduleResponse, error) {
	s.logger.Info("UpdateSpecific: exception id=%d, chapel=%d", id, req.ChapelID)

	exception, err := req.ToDomainSpecific()
	if err != nil {
		s.logger.Warn("UpdateSpecific: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	exception.ID = id

	if err := s.checkParish(ctx, "UpdateSpecific", req.ParishID, req.ChapelID); err != nil {
		return nil, err
	}

	var updated *domain.SpecificSchedule
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.scheduleRepo.GetSpecific(txCtx, req.ChapelID, id); err != nil {
			return err
		}

		if err := s.guardConflict(txCtx, exception); err != nil {
			return err
		}

		var err error
		updated, err = s.scheduleRepo.UpdateSpecific(txCtx, exception)
		return err
	})
	if err != nil {
		return nil, s.mapRepoError("UpdateSpecific", err)
	}

	s.invalidate(ctx, updated.ChapelID)
	return models.FromDomainSpecific(updated), nil
}

// DeleteSpecific удаляет исключение часовни
func (s *Service) DeleteSpecific(ctx context.Context, parishID, chapelID, id int64) error {
	s.logger.Info("DeleteSpecific: exception id=%d, chapel=%d", id, chapelID)

	if err := s.checkParish(ctx, "DeleteSpecific", parishID, chapelID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteSpecific(ctx, chapelID, id); err != nil {
		return s.mapRepoError("DeleteSpecific", err)
	}

	s.invalidate(ctx, chapelID)
	return nil
}

// guardConflict отклоняет исключение, если на ту же дату есть исключение другого типа
func (s *Service) guardConflict(ctx context.Context, exception *domain.SpecificSchedule) error {
	if err := s.locker.LockChapelDate(ctx, exception.ChapelID, exception.Date); err != nil {
		return fmt.Errorf("%w: failed to lock chapel date: %w", ErrInternal, err)
	}

	existing, err := s.scheduleRepo.ListSpecificInRange(ctx, exception.ChapelID, exception.Date, exception.Date)
	if err != nil {
		return fmt.Errorf("%w: failed to load exceptions: %w", ErrInternal, err)
	}

	for _, other := range existing {
		if exception.ConflictsWith(other) {
			return fmt.Errorf("%w: %s exception id=%d already exists on %s",
				ErrScheduleConflict, other.ExceptionType, other.ID, other.Date.Format(domain.DateFormat))
		}
	}
	return nil
}

// checkParish проверяет, что часовня принадлежит приходу администратора
func (s *Service) checkParish(ctx context.Context, op string, parishID, chapelID int64) error {
	chapel, err := s.getChapel(ctx, op, chapelID)
	if err != nil {
		return err
	}
	if chapel.ParishID != parishID {
		s.logger.Warn("%s: chapel=%d does not belong to parish=%d", op, chapelID, parishID)
		return ErrChapelNotFound
	}
	return nil
}

func (s *Service) getChapel(ctx context.Context, op string, chapelID int64) (*domain.Chapel, error) {
	chapel, err := s.chapelRepo.GetChapel(ctx, chapelID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrChapelNotFound) {
			s.logger.Warn("%s: chapel=%d not found", op, chapelID)
			return nil, ErrChapelNotFound
		}
		s.logger.Error("%s: failed to get chapel=%d: %v", op, chapelID, err)
		return nil, fmt.Errorf("%w: %s - failed to get chapel: %v", ErrInternal, op, err)
	}
	return chapel, nil
}

func (s *Service) mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, ErrScheduleConflict), errors.Is(err, ErrInternal):
		s.logger.Warn("%s: %v", op, err)
		return err
	case errors.Is(err, scheduleRepo.ErrScheduleNotFound):
		return ErrScheduleNotFound
	}

	if message, ok := integrity.MessageOf(err); ok {
		s.logger.Warn("%s: integrity violation: %v", op, err)
		return fmt.Errorf("%w: %s", ErrInvalidInput, message)
	}

	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) invalidate(ctx context.Context, chapelID int64) {
	if err := s.cache.Invalidate(ctx, chapelID); err != nil {
		s.logger.Warn("failed to invalidate slot cache for chapel=%d: %v", chapelID, err)
	}
}
