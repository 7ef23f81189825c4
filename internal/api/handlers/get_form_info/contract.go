package get_form_info

import (
	"context"

	"github.com/m04kA/ParishReservationService/internal/service/catalog/models"
)

type CatalogService interface {
	GetFormInfo(ctx context.Context, variantID int64) (*models.FormInfoResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
