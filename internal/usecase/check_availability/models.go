package check_availability

import (
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// Request запрос проверки доступности слота
type Request struct {
	EventVariantID int64
	Date           time.Time        // Дата (без времени)
	Time           types.TimeString // Время начала, "HH:MM"
}

// Response решение о доступности
type Response struct {
	Available bool
	Reason    string // пусто, если слот доступен
}
