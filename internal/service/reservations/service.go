package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/ParishReservationService/internal/domain"
	reservationRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	reservationRepo ReservationRepository
	agenda          AgendaLoader
	locker          Locker
	txManager       TransactionManager
	cache           SlotCache
	publisher       EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	agenda AgendaLoader,
	locker Locker,
	txManager TransactionManager,
	cache SlotCache,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		agenda:          agenda,
		locker:          locker,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ListPending активные бронирования пользователя (RESERVED, IN_PROGRESS), ближайшие первыми
func (s *Service) ListPending(ctx context.Context, req *models.ListUserReservationsRequest) (*models.ReservationListResponse, error) {
	return s.listForUser(ctx, "ListPending", req, domain.PendingStatuses, true)
}

// ListHistory завершенные, отмененные и отклоненные бронирования пользователя
func (s *Service) ListHistory(ctx context.Context, req *models.ListUserReservationsRequest) (*models.ReservationListResponse, error) {
	return s.listForUser(ctx, "ListHistory", req, domain.HistoryStatuses, false)
}

func (s *Service) listForUser(
	ctx context.Context,
	op string,
	req *models.ListUserReservationsRequest,
	statuses []domain.ReservationStatus,
	pendingOrder bool,
) (*models.ReservationListResponse, error) {
	s.logger.Info("%s: user=%d, page=%d, limit=%d, search=%q", op, req.UserID, req.Page, req.Limit, req.Search)

	filter, err := req.ToDomainFilter(statuses, pendingOrder)
	if err != nil {
		s.logger.Warn("%s: invalid filter for user=%d: %v", op, req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reservations, total, err := s.reservationRepo.ListByUser(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error for user=%d: %v", op, req.UserID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: fetched %d of %d reservations for user=%d", op, len(reservations), total, req.UserID)
	return models.FromDomainReservationList(reservations, domain.NewPageMeta(total, filter.Pagination)), nil
}

// GetDetails бронирование с требованиями, упоминаниями и статусом оплаты
// Доступно только владельцу
func (s *Service) GetDetails(ctx context.Context, userID, reservationID int64) (*models.ReservationDetailsResponse, error) {
	s.logger.Info("GetDetails: reservation id=%d for user=%d", reservationID, userID)

	reservation, err := s.getReservation(ctx, "GetDetails", reservationID, s.reservationRepo.GetByID)
	if err != nil {
		return nil, err
	}

	if reservation.UserID != userID {
		s.logger.Warn("GetDetails: access denied for user=%d to reservation id=%d", userID, reservationID)
		return nil, ErrAccessDenied
	}

	requirements, err := s.reservationRepo.ListRequirements(ctx, reservationID)
	if err != nil {
		s.logger.Error("GetDetails: failed to get requirements of reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: GetDetails - requirements: %v", ErrInternal, err)
	}

	mentions, err := s.reservationRepo.ListMentions(ctx, reservationID)
	if err != nil {
		s.logger.Error("GetDetails: failed to get mentions of reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: GetDetails - mentions: %v", ErrInternal, err)
	}

	return models.FromDomainDetails(reservation, requirements, mentions), nil
}

// Cancel отменяет бронирование владельцем
// Отменить можно только бронирование в статусе RESERVED или IN_PROGRESS
func (s *Service) Cancel(ctx context.Context, userID, reservationID int64) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, userID)

	var cancelled *domain.Reservation
	var previous domain.ReservationStatus

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.getReservation(txCtx, "Cancel", reservationID, s.reservationRepo.GetForUpdate)
		if err != nil {
			return err
		}

		if reservation.UserID != userID {
			s.logger.Warn("Cancel: access denied for user=%d to reservation id=%d", userID, reservationID)
			return ErrAccessDenied
		}

		if !reservation.CanBeCancelledByOwner() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservationID, reservation.Status)
			return ErrCannotCancel
		}

		status := domain.StatusCancelled
		if err := s.reservationRepo.Update(txCtx, reservationID, domain.ReservationPatch{Status: &status}); err != nil {
			return s.mapRepoError("Cancel", reservationID, err)
		}

		previous = reservation.Status
		reservation.Status = status
		cancelled = reservation
		return nil
	})
	if err != nil {
		return nil, s.wrapInternal("Cancel", err)
	}

	s.logger.Info("Cancel: reservation id=%d cancelled", reservationID)
	s.afterCommit(ctx, eventbus.EventReservationCancelled, cancelled, previous)

	return &models.CancelResponse{ID: cancelled.ID, Status: string(cancelled.Status)}, nil
}

// ListForParish административный список бронирований прихода
func (s *Service) ListForParish(ctx context.Context, req *models.ListParishReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("ListForParish: parish=%d, status=%v, search=%q, page=%d", req.ParishID, req.Status, req.Search, req.Page)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListForParish: invalid filter for parish=%d: %v", req.ParishID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reservations, total, err := s.reservationRepo.ListByParish(ctx, filter)
	if err != nil {
		s.logger.Error("ListForParish: repository error for parish=%d: %v", req.ParishID, err)
		return nil, fmt.Errorf("%w: ListForParish - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainReservationList(reservations, domain.NewPageMeta(total, filter.Pagination)), nil
}

// Reject отклоняет бронирование (RESERVED -> REJECTED)
func (s *Service) Reject(ctx context.Context, parishID, reservationID int64) (*models.ReservationResponse, error) {
	status := string(domain.StatusRejected)
	return s.AdminUpdate(ctx, parishID, reservationID, &models.AdminUpdateRequest{Status: &status})
}

// AdminUpdate частичное обновление бронирования администратором прихода
//
// Статус меняется только по таблице переходов, бронирования в конечных статусах
// не изменяются. Перенос на другую дату или время заново проверяет доступность
// (без учета самого бронирования) под той же блокировкой, что и бронирование,
// и сохраняет прежнюю дату в reschedule_date.
func (s *Service) AdminUpdate(ctx context.Context, parishID, reservationID int64, req *models.AdminUpdateRequest) (*models.ReservationResponse, error) {
	s.logger.Info("AdminUpdate: reservation id=%d, parish=%d", reservationID, parishID)

	patch, err := req.ToDomainPatch()
	if err != nil {
		s.logger.Warn("AdminUpdate: invalid patch for reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var updated *domain.Reservation
	var previous domain.ReservationStatus

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.getReservation(txCtx, "AdminUpdate", reservationID, s.reservationRepo.GetForUpdate)
		if err != nil {
			return err
		}

		if current.ParishID != parishID {
			s.logger.Warn("AdminUpdate: reservation id=%d does not belong to parish=%d", reservationID, parishID)
			return ErrReservationNotFound
		}

		if current.Status.IsTerminal() {
			return fmt.Errorf("%w: status %s", ErrImmutable, current.Status)
		}

		if patch.Status != nil && *patch.Status != current.Status && !current.Status.CanTransitionTo(*patch.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, *patch.Status)
		}

		if patch.ChangesSlot() {
			if err := s.checkReschedule(txCtx, current, &patch); err != nil {
				return err
			}
		}

		if err := s.reservationRepo.Update(txCtx, reservationID, patch); err != nil {
			return s.mapRepoError("AdminUpdate", reservationID, err)
		}

		updated, err = s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			return fmt.Errorf("%w: AdminUpdate - reload: %w", ErrInternal, err)
		}

		previous = current.Status
		return nil
	})
	if err != nil {
		return nil, s.wrapInternal("AdminUpdate", err)
	}

	s.logger.Info("AdminUpdate: reservation id=%d updated, status=%s", reservationID, updated.Status)

	if updated.Status != previous {
		s.afterCommit(ctx, eventbus.EventReservationStatusChanged, updated, previous)
	} else {
		s.invalidate(ctx, updated.ChapelID)
	}

	return models.FromDomainReservation(updated), nil
}

// checkReschedule проверяет новый слот и дополняет патч датой переноса
func (s *Service) checkReschedule(ctx context.Context, current *domain.Reservation, patch *domain.ReservationPatch) error {
	date := current.EventDate
	if patch.EventDate != nil {
		date = *patch.EventDate
	}
	at := current.EventTime
	if patch.EventTime != nil {
		at = *patch.EventTime
	}

	if reason, past := domain.PastReason(date, at, s.timeProvider.Now()); past {
		return unavailable(reason)
	}

	if err := s.locker.LockChapelDate(ctx, current.ChapelID, date); err != nil {
		return fmt.Errorf("%w: failed to lock chapel date: %w", ErrInternal, err)
	}

	agenda, err := s.agenda.Day(ctx, current.ChapelID, date)
	if err != nil {
		return fmt.Errorf("%w: failed to load agenda: %w", ErrInternal, err)
	}

	decision := domain.ResolveAvailability(agenda, domain.AvailabilityQuery{
		Start:               at,
		DurationMinutes:     current.DurationMinutes,
		IgnoreReservationID: current.ID,
	})
	if !decision.Available {
		return unavailable(decision.Reason)
	}

	previousDate := domain.DateOnly(current.EventDate)
	patch.RescheduleDate = &previousDate
	return nil
}

type fetchFunc func(ctx context.Context, id int64) (*domain.Reservation, error)

func (s *Service) getReservation(ctx context.Context, op string, id int64, fetch fetchFunc) (*domain.Reservation, error) {
	reservation, err := fetch(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return reservation, nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		return ErrReservationNotFound
	case errors.Is(err, reservationRepo.ErrSlotTaken):
		return fmt.Errorf("%w: %w", ErrSlotTaken, &domain.UnavailableError{Reason: domain.ReasonSlotNoLongerAvailable})
	default:
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - update: %w", ErrInternal, op, err)
	}
}

// wrapInternal оставляет ошибки сервиса как есть, остальное превращает в ErrInternal
func (s *Service) wrapInternal(op string, err error) error {
	for _, known := range []error{
		ErrReservationNotFound, ErrAccessDenied, ErrCannotCancel, ErrInvalidTransition,
		ErrImmutable, ErrSlotNotAvailable, ErrSlotTaken, ErrInternal,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, txmanager.ErrRetriesExhausted) {
		s.logger.Warn("%s: serialization retries exhausted: %v", op, err)
		return fmt.Errorf("%w: %w", ErrSlotTaken, &domain.UnavailableError{Reason: domain.ReasonSlotNoLongerAvailable})
	}

	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func (s *Service) afterCommit(ctx context.Context, eventType eventbus.EventType, r *domain.Reservation, previous domain.ReservationStatus) {
	s.invalidate(ctx, r.ChapelID)

	event := eventbus.NewReservationEvent(eventType, r, previous, s.timeProvider.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish %s for reservation id=%d: %v", eventType, r.ID, err)
	}
}

func (s *Service) invalidate(ctx context.Context, chapelID int64) {
	if err := s.cache.Invalidate(ctx, chapelID); err != nil {
		s.logger.Warn("failed to invalidate slot cache for chapel=%d: %v", chapelID, err)
	}
}

func unavailable(reason string) error {
	return fmt.Errorf("%w: %w", ErrSlotNotAvailable, &domain.UnavailableError{Reason: reason})
}
