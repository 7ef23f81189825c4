package general_schedules

import (
	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// ReplaceGeneralRequest HTTP request model: полный набор блоков недельного расписания
type ReplaceGeneralRequest struct {
	Schedules []GeneralBlockRequest `json:"schedules" validate:"max=100,dive"`
}

// GeneralBlockRequest блок недельного расписания
type GeneralBlockRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,gte=0,lte=6"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *ReplaceGeneralRequest) ToServiceRequest(parishID, chapelID int64) (*models.ReplaceGeneralRequest, error) {
	blocks := make([]models.GeneralBlock, 0, len(r.Schedules))
	for _, s := range r.Schedules {
		start, err := types.ParseTimeString(s.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := types.ParseTimeString(s.EndTime)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, models.GeneralBlock{
			DayOfWeek: *s.DayOfWeek,
			StartTime: start,
			EndTime:   end,
		})
	}

	return &models.ReplaceGeneralRequest{
		ParishID: parishID,
		ChapelID: chapelID,
		Blocks:   blocks,
	}, nil
}
