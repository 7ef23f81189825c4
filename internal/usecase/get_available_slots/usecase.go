package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/ParishReservationService/internal/domain"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
)

// UseCase use case для получения свободных слотов варианта события за период
type UseCase struct {
	catalogRepo  CatalogRepository
	agenda       AgendaLoader
	cache        SlotCache
	observer     CacheObserver
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	agenda AgendaLoader,
	cache SlotCache,
	observer CacheObserver,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:  catalogRepo,
		agenda:       agenda,
		cache:        cache,
		observer:     observer,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: variant=%d, start=%s, end=%s",
		req.EventVariantID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Валидация периода
	now := uc.timeProvider.Now()
	if err := validateRange(req.StartDate, req.EndDate, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: range validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем вариант события
	variant, err := uc.catalogRepo.GetEventVariant(ctx, req.EventVariantID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrVariantNotFound) {
			uc.logger.Warn("GetAvailableSlots: variant id=%d not found", req.EventVariantID)
			return nil, ErrVariantNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get variant id=%d: %v", req.EventVariantID, err)
		return nil, fmt.Errorf("%w: failed to get variant: %v", ErrInternal, err)
	}

	if !variant.IsBookable() {
		uc.logger.Warn("GetAvailableSlots: variant id=%d is not active", req.EventVariantID)
		return nil, ErrVariantNotFound
	}

	// 4. Прошедшие даты отбрасываем
	from := domain.DateOnly(req.StartDate)
	if today := domain.DateOnly(now); from.Before(today) {
		from = today
	}
	to := domain.DateOnly(req.EndDate)

	// 5. Пробуем кэш
	key, err := uc.cache.Key(ctx, variant.ChapelID, variant.ID, from, to)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: cache key failed, computing without cache: %v", err)
		key = ""
	}

	if key != "" {
		days, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("GetAvailableSlots: cache read failed: %v", err)
		}
		if ok {
			uc.observer.IncSlotCache(true)
			return newResponse(dropStartedSlots(days, now), true), nil
		}
		uc.observer.IncSlotCache(false)
	}

	// 6. Загружаем расписание и бронирования за весь период
	calendar, err := uc.agenda.Range(ctx, variant.ChapelID, from, to)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load agenda for chapel=%d: %v", variant.ChapelID, err)
		return nil, fmt.Errorf("%w: failed to load agenda: %v", ErrInternal, err)
	}

	// 7. Перебираем даты и сетку времени
	dates, err := dailyDates(from, to)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to iterate dates: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// В кэш попадают полные дни, начавшиеся слоты сегодняшнего дня отсекаются при каждом ответе
	days := enumerateSlots(calendar, dates, variant.DurationMinutes)

	if key != "" {
		if err := uc.cache.Set(ctx, key, days); err != nil {
			uc.logger.Warn("GetAvailableSlots: cache write failed: %v", err)
		}
	}

	resp := newResponse(dropStartedSlots(days, now), false)
	uc.logger.Info("GetAvailableSlots: variant=%d, %d dates, %d slots",
		req.EventVariantID, len(resp.AvailableDates), resp.TotalSlots)

	return resp, nil
}
