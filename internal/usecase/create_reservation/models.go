package create_reservation

import (
	"time"

	"github.com/m04kA/ParishReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID              int64            // ID пользователя из токена
	EventVariantID      int64            // ID варианта события
	Date                time.Time        // Дата события (без времени)
	Time                types.TimeString // Время начала, "HH:MM"
	BeneficiaryFullName *string          // Для кого бронирование; по умолчанию ФИО пользователя
	Mentions            []Mention        // Упоминания (опционально)
}

// Mention упоминание в запросе
type Mention struct {
	MentionTypeID int64
	MentionName   string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ReservationID       int64
	Status              string
	BeneficiaryFullName string
	EventDate           time.Time
	EventTime           types.TimeString
	ConfirmationMessage string
}
