package check_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/ParishReservationService/internal/domain"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
)

// UseCase use case проверки доступности слота для варианта события
type UseCase struct {
	catalogRepo  CatalogRepository
	agenda       AgendaLoader
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(catalogRepo CatalogRepository, agenda AgendaLoader, logger Logger) *UseCase {
	return &UseCase{
		catalogRepo:  catalogRepo,
		agenda:       agenda,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute проверяет, можно ли забронировать вариант события на дату и время
// Отказ в бронировании не является ошибкой: Response.Available=false и причина
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: variant=%d, date=%s, time=%s",
		req.EventVariantID, req.Date.Format(domain.DateFormat), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем вариант события (длительность и часовня)
	variant, err := uc.catalogRepo.GetEventVariant(ctx, req.EventVariantID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrVariantNotFound) {
			uc.logger.Warn("CheckAvailability: variant id=%d not found", req.EventVariantID)
			return nil, ErrVariantNotFound
		}
		uc.logger.Error("CheckAvailability: failed to get variant id=%d: %v", req.EventVariantID, err)
		return nil, fmt.Errorf("%w: failed to get variant: %v", ErrInternal, err)
	}

	if !variant.IsBookable() {
		uc.logger.Warn("CheckAvailability: variant id=%d is not active", req.EventVariantID)
		return nil, ErrVariantNotFound
	}

	// 3. Прошедшие даты и уже начавшиеся сегодня слоты не бронируются
	if reason, past := domain.PastReason(req.Date, req.Time, uc.timeProvider.Now()); past {
		return &Response{Available: false, Reason: reason}, nil
	}

	// 4. Загружаем расписание и бронирования часовни на дату
	agenda, err := uc.agenda.Day(ctx, variant.ChapelID, req.Date)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to load agenda for chapel=%d: %v", variant.ChapelID, err)
		return nil, fmt.Errorf("%w: failed to load agenda: %v", ErrInternal, err)
	}

	// 5. Применяем правила доступности
	decision := domain.ResolveAvailability(agenda, domain.AvailabilityQuery{
		Start:           req.Time,
		DurationMinutes: variant.DurationMinutes,
	})

	uc.logger.Info("CheckAvailability: variant=%d, date=%s, time=%s, available=%t, reason=%q",
		req.EventVariantID, req.Date.Format(domain.DateFormat), req.Time, decision.Available, decision.Reason)

	return &Response{Available: decision.Available, Reason: decision.Reason}, nil
}
