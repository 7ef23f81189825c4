package list_parish_reservations

import (
	"net/http"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(parishID int64, r *http.Request) (*models.ListParishReservationsRequest, error) {
	query := r.URL.Query()

	req := &models.ListParishReservationsRequest{
		ParishID: parishID,
		Search:   query.Get("search"),
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
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
