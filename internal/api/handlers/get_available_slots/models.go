package get_available_slots

import (
	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	"github.com/m04kA/ParishReservationService/internal/domain"
	getAvailableSlots "github.com/m04kA/ParishReservationService/internal/usecase/get_available_slots"
)

// SlotsQuery query параметры запроса
type SlotsQuery struct {
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate" validate:"required,date"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	AvailableDates []string                   `json:"availableDates"`
	SlotsByDate    map[string][]AvailableSlot `json:"slotsByDate"`
	TotalSlots     int                        `json:"totalSlots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Time        string `json:"time"`        // "09:00"
	TimeDisplay string `json:"timeDisplay"` // "09:00 AM"
}

// ToUseCaseRequest создает запрос use case из query параметров
func (q *SlotsQuery) ToUseCaseRequest(variantID int64) (*getAvailableSlots.Request, error) {
	start, err := handlers.ParseDate(q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := handlers.ParseDate(q.EndDate)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		EventVariantID: variantID,
		StartDate:      start,
		EndDate:        end,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		AvailableDates: make([]string, 0, len(resp.AvailableDates)),
		SlotsByDate:    make(map[string][]AvailableSlot, len(resp.Days)),
		TotalSlots:     resp.TotalSlots,
	}

	for _, date := range resp.AvailableDates {
		out.AvailableDates = append(out.AvailableDates, date.Format(domain.DateFormat))
	}

	for _, day := range resp.Days {
		slots := make([]AvailableSlot, len(day.Slots))
		for i, slot := range day.Slots {
			slots[i] = AvailableSlot{
				Time:        slot.Time.String(),
				TimeDisplay: slot.TimeDisplay(),
			}
		}
		out.SlotsByDate[day.Date.Format(domain.DateFormat)] = slots
	}

	return out
}
