package get_available_slots

import (
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// Request модель запроса на получение свободных слотов за период
type Request struct {
	EventVariantID int64
	StartDate      time.Time // Начало периода (включительно)
	EndDate        time.Time // Конец периода (включительно)
}

// Response свободные слоты, сгруппированные по датам
type Response struct {
	AvailableDates []time.Time       // Даты, на которые есть хотя бы один слот, по возрастанию
	Days           []domain.DaySlots // Слоты по датам, по возрастанию даты и времени
	TotalSlots     int
	Cached         bool // ответ взят из кэша
}

func newResponse(days []domain.DaySlots, cached bool) *Response {
	resp := &Response{
		AvailableDates: make([]time.Time, 0, len(days)),
		Days:           days,
		Cached:         cached,
	}
	for _, day := range days {
		resp.AvailableDates = append(resp.AvailableDates, day.Date)
		resp.TotalSlots += len(day.Slots)
	}
	return resp
}
