package memstore

import (
	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// Fixture a ready-to-book chapel with one event variant
type Fixture struct {
	ParishID      int64
	ChapelID      int64
	EventID       int64
	ChapelEventID int64
	VariantID     int64
}

// AddChapel добавляет активную часовню
func (s *Store) AddChapel(parishID int64, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.data.chapels[id] = domain.Chapel{ID: id, ParishID: parishID, Name: name, Active: true}
	return id
}

// AddVariant добавляет вариант события; ID, часовня и приход берутся из v
// Поля ParishID и ChapelName заполняются из часовни, если она есть
func (s *Store) AddVariant(v domain.EventVariant) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == 0 {
		v.ID = s.id()
	}
	if chapel, ok := s.data.chapels[v.ChapelID]; ok {
		v.ParishID = chapel.ParishID
		v.ChapelName = chapel.Name
	}
	s.data.variants[v.ID] = v
	return v.ID
}

// UpdateVariant изменяет сохраненный вариант
func (s *Store) UpdateVariant(id int64, fn func(v *domain.EventVariant)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.data.variants[id]
	fn(&v)
	s.data.variants[id] = v
}

// AddRequirement добавляет активное требование; ownerID это event_id (BASE) или chapel_event_id (CHAPEL)
func (s *Store) AddRequirement(kind domain.RequirementKind, ownerID int64, name, description string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.data.requirements = append(s.data.requirements, requirementRow{
		ownerID: ownerID,
		active:  true,
		source:  domain.RequirementSource{ID: id, Kind: kind, Name: name, Description: description},
	})
	return id
}

// UpdateRequirement меняет определение требования в каталоге
func (s *Store) UpdateRequirement(id int64, name string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.requirements {
		if s.data.requirements[i].source.ID == id {
			s.data.requirements[i].source.Name = name
			s.data.requirements[i].active = active
		}
	}
}

// AddProfile добавляет профиль пользователя
func (s *Store) AddProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.profiles[p.UserID] = p
}

// AddGeneral добавляет блок недельного расписания
func (s *Store) AddGeneral(chapelID int64, day int, start, end types.TimeString) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.data.general = append(s.data.general, domain.GeneralSchedule{
		ID:        id,
		ChapelID:  chapelID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Active:    true,
	})
	return id
}

// AddSpecific добавляет исключение без проверок
func (s *Store) AddSpecific(sp domain.SpecificSchedule) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp.ID = s.id()
	sp.Active = true
	sp.Date = domain.DateOnly(sp.Date)
	s.data.specific = append(s.data.specific, sp)
	return sp.ID
}

// Reservations возвращает копию всех бронирований
func (s *Store) Reservations() []domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Reservation(nil), s.data.reservations...)
}

// Seed создает приход, часовню с расписанием Пн-Пт 08:00-18:00 и активный вариант
// длительностью durationMinutes
func (s *Store) Seed(durationMinutes int) Fixture {
	f := Fixture{ParishID: 1, EventID: 100, ChapelEventID: 200}
	f.ChapelID = s.AddChapel(f.ParishID, "San José")

	for day := 1; day <= 5; day++ {
		s.AddGeneral(f.ChapelID, day, "08:00", "18:00")
	}

	f.VariantID = s.AddVariant(domain.EventVariant{
		ChapelEventID:     f.ChapelEventID,
		EventID:           f.EventID,
		ChapelID:          f.ChapelID,
		Name:              "Standard",
		Price:             150,
		MaxCapacity:       1,
		DurationMinutes:   durationMinutes,
		EventName:         "Baptism",
		ParishName:        "Parroquia San José",
		Active:            true,
		ChapelEventActive: true,
		ChapelActive:      true,
	})

	return f
}
