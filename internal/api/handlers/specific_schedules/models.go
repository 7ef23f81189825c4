package specific_schedules

import (
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// SpecificScheduleRequest HTTP request model
// Обязательность времени для OPEN проверяет сервис
type SpecificScheduleRequest struct {
	Date          string  `json:"date" validate:"required,date"`
	ExceptionType string  `json:"exceptionType" validate:"required,oneof=OPEN CLOSED"`
	StartTime     *string `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime       *string `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Reason        string  `json:"reason,omitempty" validate:"max=500"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *SpecificScheduleRequest) ToServiceRequest(parishID, chapelID int64) (*models.SpecificRequest, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	req := &models.SpecificRequest{
		ParishID:      parishID,
		ChapelID:      chapelID,
		Date:          date,
		ExceptionType: r.ExceptionType,
		Reason:        r.Reason,
	}
	if req.StartTime, err = parseOptionalTime(r.StartTime); err != nil {
		return nil, err
	}
	if req.EndTime, err = parseOptionalTime(r.EndTime); err != nil {
		return nil, err
	}
	return req, nil
}

// ToListRequest формирует запрос списка исключений из query параметров
func ToListRequest(parishID, chapelID int64, r *http.Request) (*models.ListSpecificRequest, error) {
	query := r.URL.Query()

	req := &models.ListSpecificRequest{ParishID: parishID, ChapelID: chapelID}
	if exceptionType := query.Get("exceptionType"); exceptionType != "" {
		req.ExceptionType = &exceptionType
	}

	var err error
	if req.StartDate, err = handlers.ParseOptionalDate("startDate", query.Get("startDate")); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.ParseOptionalDate("endDate", query.Get("endDate")); err != nil {
		return nil, err
	}
	if req.Page, err = handlers.QueryInt(r, "page"); err != nil {
		return nil, err
	}
	if req.Limit, err = handlers.QueryInt(r, "limit"); err != nil {
		return nil, err
	}
	return req, nil
}

func parseOptionalTime(value *string) (*types.TimeString, error) {
	if value == nil {
		return nil, nil
	}
	t, err := types.ParseTimeString(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
