package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/ParishReservationService/internal/service/catalog/models"
)

// Service сервис публичных данных каталога событий
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// GetFormInfo возвращает данные для формы бронирования
// Вариант, событие часовни и часовня должны быть активны
func (s *Service) GetFormInfo(ctx context.Context, variantID int64) (*models.FormInfoResponse, error) {
	s.logger.Info("GetFormInfo: variant=%d", variantID)

	variant, err := s.catalogRepo.GetEventVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrVariantNotFound) {
			s.logger.Warn("GetFormInfo: variant id=%d not found", variantID)
			return nil, ErrVariantNotFound
		}
		s.logger.Error("GetFormInfo: failed to get variant id=%d: %v", variantID, err)
		return nil, fmt.Errorf("%w: GetFormInfo - failed to get variant: %v", ErrInternal, err)
	}

	if !variant.IsBookable() {
		s.logger.Warn("GetFormInfo: variant id=%d is not active", variantID)
		return nil, ErrVariantNotFound
	}

	base, err := s.catalogRepo.ListActiveBaseRequirements(ctx, variant.EventID)
	if err != nil {
		s.logger.Error("GetFormInfo: failed to list base requirements for event=%d: %v", variant.EventID, err)
		return nil, fmt.Errorf("%w: GetFormInfo - base requirements: %v", ErrInternal, err)
	}

	chapel, err := s.catalogRepo.ListActiveChapelRequirements(ctx, variant.ChapelEventID)
	if err != nil {
		s.logger.Error("GetFormInfo: failed to list chapel requirements for chapel_event=%d: %v", variant.ChapelEventID, err)
		return nil, fmt.Errorf("%w: GetFormInfo - chapel requirements: %v", ErrInternal, err)
	}

	return models.FromDomainVariant(variant, append(base, chapel...)), nil
}
