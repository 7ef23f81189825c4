package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/ParishReservationService/internal/domain"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	personRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/person"
	reservationRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	catalogRepo     CatalogRepository
	profileRepo     ProfileRepository
	reservationRepo ReservationRepository
	agenda          AgendaLoader
	locker          Locker
	txManager       TransactionManager
	cache           SlotCache
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	profileRepo ProfileRepository,
	reservationRepo ReservationRepository,
	agenda AgendaLoader,
	locker Locker,
	txManager TransactionManager,
	cache SlotCache,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		profileRepo:     profileRepo,
		reservationRepo: reservationRepo,
		agenda:          agenda,
		locker:          locker,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
//
// Проверка доступности и вставка идут в одной SERIALIZABLE транзакции под
// advisory-блокировкой (часовня, дата), поэтому два параллельных запроса на
// пересекающиеся интервалы не могут оба увидеть слот свободным.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, variant=%d, date=%s, time=%s",
		req.UserID, req.EventVariantID, req.Date.Format(domain.DateFormat), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем вариант события
	variant, err := uc.catalogRepo.GetEventVariant(ctx, req.EventVariantID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrVariantNotFound) {
			uc.logger.Warn("CreateReservation: variant id=%d not found", req.EventVariantID)
			return nil, ErrVariantNotFound
		}
		uc.logger.Error("CreateReservation: failed to get variant id=%d: %v", req.EventVariantID, err)
		return nil, fmt.Errorf("%w: failed to get variant: %v", ErrInternal, err)
	}

	if !variant.IsBookable() {
		uc.logger.Warn("CreateReservation: variant id=%d is not active", req.EventVariantID)
		return nil, ErrVariantNotFound
	}

	// 3. Прошедшие даты и уже начавшиеся сегодня слоты не бронируются
	date := domain.DateOnly(req.Date)
	if reason, past := domain.PastReason(date, req.Time, uc.timeProvider.Now()); past {
		uc.logger.Warn("CreateReservation: %s %s is in the past", date.Format(domain.DateFormat), req.Time)
		return nil, unavailable(reason)
	}

	var created *domain.Reservation

	// 4. Проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем (часовня, дата)
		// Снимок SERIALIZABLE берется до ожидания блокировки: победителя гонки
		// отсекают SSI (повтор транзакции) и ограничение ex_reservation_chapel_slot
		if err := uc.locker.LockChapelDate(txCtx, variant.ChapelID, date); err != nil {
			return fmt.Errorf("%w: failed to lock chapel date: %w", ErrInternal, err)
		}

		// 4.2. Повторная проверка доступности внутри транзакции
		agenda, err := uc.agenda.Day(txCtx, variant.ChapelID, date)
		if err != nil {
			return fmt.Errorf("%w: failed to load agenda: %w", ErrInternal, err)
		}

		decision := domain.ResolveAvailability(agenda, domain.AvailabilityQuery{
			Start:           req.Time,
			DurationMinutes: variant.DurationMinutes,
		})
		if !decision.Available {
			return unavailable(decision.Reason)
		}

		// 4.3. Определяем получателя
		beneficiary, err := uc.resolveBeneficiary(txCtx, req)
		if err != nil {
			return err
		}

		// 4.4. Создаем бронирование
		reservation := &domain.Reservation{
			UserID:              req.UserID,
			EventVariantID:      variant.ID,
			ChapelID:            variant.ChapelID,
			EventDate:           date,
			EventTime:           req.Time,
			DurationMinutes:     variant.DurationMinutes,
			Status:              domain.StatusReserved,
			BeneficiaryFullName: beneficiary,
			PaidAmount:          0,
			EventName:           variant.EventName,
			VariantName:         variant.Name,
			ChapelName:          variant.ChapelName,
			ParishID:            variant.ParishID,
			VariantPrice:        variant.Price,
		}

		reservation, err = uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		// 4.5. Упоминания
		if err := uc.reservationRepo.CreateMentions(txCtx, reservation.ID, toMentions(req.Mentions)); err != nil {
			return fmt.Errorf("%w: failed to create mentions: %w", ErrInternal, err)
		}

		// 4.6. Снимок требований на момент бронирования
		requirements, err := uc.snapshotRequirements(txCtx, variant)
		if err != nil {
			return err
		}
		if err := uc.reservationRepo.CreateRequirements(txCtx, reservation.ID, requirements); err != nil {
			return fmt.Errorf("%w: failed to create requirements: %w", ErrInternal, err)
		}

		created = reservation
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(req, err)
	}

	uc.logger.Info("CreateReservation: created reservation id=%d for user=%d", created.ID, created.UserID)

	// 5. После коммита: кэш, события, метрики
	uc.afterCommit(ctx, created)

	return &Response{
		ReservationID:       created.ID,
		Status:              string(created.Status),
		BeneficiaryFullName: created.BeneficiaryFullName,
		EventDate:           created.EventDate,
		EventTime:           created.EventTime,
		ConfirmationMessage: confirmationMessage(variant.EventName, created),
	}, nil
}

// resolveBeneficiary непустое имя из запроса, иначе ФИО пользователя
func (uc *UseCase) resolveBeneficiary(ctx context.Context, req *Request) (string, error) {
	if req.BeneficiaryFullName != nil {
		if name := strings.TrimSpace(*req.BeneficiaryFullName); name != "" {
			return name, nil
		}
	}

	profile, err := uc.profileRepo.GetProfileByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, personRepo.ErrProfileNotFound) {
			return "", ErrBeneficiaryRequired
		}
		return "", fmt.Errorf("%w: failed to get profile: %w", ErrInternal, err)
	}

	name := profile.FullName()
	if name == "" {
		return "", ErrBeneficiaryRequired
	}
	return name, nil
}

// snapshotRequirements копирует активные базовые требования события и требования часовни
func (uc *UseCase) snapshotRequirements(ctx context.Context, variant *domain.EventVariant) ([]domain.ReservationRequirement, error) {
	base, err := uc.catalogRepo.ListActiveBaseRequirements(ctx, variant.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get base requirements: %w", ErrInternal, err)
	}

	chapel, err := uc.catalogRepo.ListActiveChapelRequirements(ctx, variant.ChapelEventID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get chapel requirements: %w", ErrInternal, err)
	}

	snapshot := make([]domain.ReservationRequirement, 0, len(base)+len(chapel))
	for _, req := range base {
		snapshot = append(snapshot, req.Snapshot())
	}
	for _, req := range chapel {
		snapshot = append(snapshot, req.Snapshot())
	}
	return snapshot, nil
}

// mapTxError приводит ошибку транзакции к ошибкам usecase
func (uc *UseCase) mapTxError(req *Request, err error) error {
	var unavailableErr *domain.UnavailableError
	switch {
	case errors.As(err, &unavailableErr):
		uc.logger.Warn("CreateReservation: variant=%d, date=%s, time=%s rejected: %s",
			req.EventVariantID, req.Date.Format(domain.DateFormat), req.Time, unavailableErr.Reason)
		uc.metrics.IncBookingConflict(unavailableErr.Reason)
		return err

	case errors.Is(err, ErrBeneficiaryRequired):
		uc.logger.Warn("CreateReservation: user=%d has no profile and no beneficiary given", req.UserID)
		return err

	case errors.Is(err, txmanager.ErrRetriesExhausted), errors.Is(err, reservationRepo.ErrSlotTaken):
		uc.logger.Warn("CreateReservation: slot taken concurrently for variant=%d, date=%s, time=%s: %v",
			req.EventVariantID, req.Date.Format(domain.DateFormat), req.Time, err)
		uc.metrics.IncBookingConflict(domain.ReasonSlotNoLongerAvailable)
		return fmt.Errorf("%w: %w", ErrSlotTaken, &domain.UnavailableError{Reason: domain.ReasonSlotNoLongerAvailable})

	default:
		uc.logger.Error("CreateReservation: transaction failed: %v", err)
		if errors.Is(err, ErrInternal) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func (uc *UseCase) afterCommit(ctx context.Context, created *domain.Reservation) {
	uc.metrics.IncReservationCreated()

	if err := uc.cache.Invalidate(ctx, created.ChapelID); err != nil {
		uc.logger.Warn("CreateReservation: failed to invalidate slot cache for chapel=%d: %v", created.ChapelID, err)
	}

	event := eventbus.NewReservationEvent(eventbus.EventReservationCreated, created, "", uc.timeProvider.Now())
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateReservation: failed to publish event for reservation id=%d: %v", created.ID, err)
	}
}

func unavailable(reason string) error {
	return fmt.Errorf("%w: %w", ErrSlotNotAvailable, &domain.UnavailableError{Reason: reason})
}

func toMentions(mentions []Mention) []domain.ReservationMention {
	result := make([]domain.ReservationMention, 0, len(mentions))
	for _, m := range mentions {
		result = append(result, domain.ReservationMention{
			MentionTypeID: m.MentionTypeID,
			MentionName:   strings.TrimSpace(m.MentionName),
		})
	}
	return result
}

// confirmationMessage "Your reservation is confirmed for <event> on DD/MM/YYYY at hh:mm AM"
func confirmationMessage(eventName string, r *domain.Reservation) string {
	return fmt.Sprintf("Your reservation is confirmed for %s on %s at %s",
		eventName, r.EventDate.Format(domain.DisplayDateFormat), r.EventTime.Display())
}
