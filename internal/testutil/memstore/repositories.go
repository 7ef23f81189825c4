package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/person"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/schedule"
)

// --- catalog ---

func (s *Store) GetEventVariant(ctx context.Context, id int64) (*domain.EventVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetEventVariant"); err != nil {
		return nil, err
	}

	v, ok := s.data.variants[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	return &v, nil
}

func (s *Store) GetChapel(ctx context.Context, id int64) (*domain.Chapel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data.chapels[id]
	if !ok {
		return nil, catalog.ErrChapelNotFound
	}
	return &c, nil
}

func (s *Store) ListActiveBaseRequirements(ctx context.Context, eventID int64) ([]*domain.RequirementSource, error) {
	return s.listRequirements(domain.RequirementBase, eventID), nil
}

func (s *Store) ListActiveChapelRequirements(ctx context.Context, chapelEventID int64) ([]*domain.RequirementSource, error) {
	return s.listRequirements(domain.RequirementChapel, chapelEventID), nil
}

func (s *Store) listRequirements(kind domain.RequirementKind, ownerID int64) []*domain.RequirementSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.RequirementSource, 0)
	for _, row := range s.data.requirements {
		if row.source.Kind == kind && row.ownerID == ownerID && row.active {
			src := row.source
			result = append(result, &src)
		}
	}
	return result
}

// --- person ---

func (s *Store) GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.profiles[userID]
	if !ok {
		return nil, person.ErrProfileNotFound
	}
	return &p, nil
}

// --- schedule ---

func (s *Store) ListGeneral(ctx context.Context, chapelID int64) ([]*domain.GeneralSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.GeneralSchedule, 0)
	for _, g := range s.data.general {
		if g.ChapelID == chapelID && g.Active {
			row := g
			result = append(result, &row)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (s *Store) ReplaceGeneral(ctx context.Context, chapelID int64, schedules []*domain.GeneralSchedule) ([]*domain.GeneralSchedule, error) {
	if !inTx(ctx) {
		return nil, schedule.ErrNotInTransaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ReplaceGeneral"); err != nil {
		return nil, err
	}

	kept := s.data.general[:0]
	for _, g := range s.data.general {
		if g.ChapelID != chapelID {
			kept = append(kept, g)
		}
	}
	s.data.general = kept

	created := make([]*domain.GeneralSchedule, 0, len(schedules))
	for _, g := range schedules {
		row := domain.GeneralSchedule{
			ID:        s.id(),
			ChapelID:  chapelID,
			DayOfWeek: g.DayOfWeek,
			StartTime: g.StartTime,
			EndTime:   g.EndTime,
			Active:    true,
		}
		s.data.general = append(s.data.general, row)
		created = append(created, &row)
	}
	return created, nil
}

func (s *Store) ListSpecific(ctx context.Context, filter domain.SpecificScheduleFilter) ([]*domain.SpecificSchedule, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.SpecificSchedule, 0)
	for _, sp := range s.data.specific {
		if sp.ChapelID != filter.ChapelID || !sp.Active {
			continue
		}
		if filter.ExceptionType != nil && sp.ExceptionType != *filter.ExceptionType {
			continue
		}
		if filter.StartDate != nil && sp.Date.Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && sp.Date.After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		row := sp
		matched = append(matched, &row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	return paginate(matched, filter.Pagination), len(matched), nil
}

func (s *Store) ListSpecificInRange(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.SpecificSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to = domain.DateOnly(from), domain.DateOnly(to)
	result := make([]*domain.SpecificSchedule, 0)
	for _, sp := range s.data.specific {
		if sp.ChapelID == chapelID && sp.Active && !sp.Date.Before(from) && !sp.Date.After(to) {
			row := sp
			result = append(result, &row)
		}
	}
	return result, nil
}

func (s *Store) GetSpecific(ctx context.Context, chapelID, id int64) (*domain.SpecificSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sp := range s.data.specific {
		if sp.ID == id && sp.ChapelID == chapelID && sp.Active {
			row := sp
			return &row, nil
		}
	}
	return nil, schedule.ErrScheduleNotFound
}

func (s *Store) CreateSpecific(ctx context.Context, sp *domain.SpecificSchedule) (*domain.SpecificSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateSpecific"); err != nil {
		return nil, err
	}

	sp.ID = s.id()
	sp.Active = true
	sp.Date = domain.DateOnly(sp.Date)
	sp.CreatedAt = s.now()
	sp.UpdatedAt = sp.CreatedAt
	s.data.specific = append(s.data.specific, *sp)
	return sp, nil
}

func (s *Store) UpdateSpecific(ctx context.Context, sp *domain.SpecificSchedule) (*domain.SpecificSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.data.specific {
		if row.ID == sp.ID && row.ChapelID == sp.ChapelID && row.Active {
			sp.Date = domain.DateOnly(sp.Date)
			sp.Active = true
			sp.CreatedAt = row.CreatedAt
			sp.UpdatedAt = s.now()
			s.data.specific[i] = *sp
			return sp, nil
		}
	}
	return nil, schedule.ErrScheduleNotFound
}

func (s *Store) DeleteSpecific(ctx context.Context, chapelID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.data.specific {
		if row.ID == id && row.ChapelID == chapelID {
			s.data.specific = append(s.data.specific[:i], s.data.specific[i+1:]...)
			return nil
		}
	}
	return schedule.ErrScheduleNotFound
}

// --- reservation ---

// Create повторяет ограничение ex_reservation_chapel_slot: пересечение активных
// бронирований часовни возвращает reservation.ErrSlotTaken
func (s *Store) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Create"); err != nil {
		return nil, err
	}

	if s.overlapsLocked(res, 0) {
		return nil, reservation.ErrSlotTaken
	}

	res.ID = s.id()
	res.CreatedAt = s.now()
	res.UpdatedAt = res.CreatedAt
	s.data.reservations = append(s.data.reservations, *res)
	return res, nil
}

func (s *Store) CreateMentions(ctx context.Context, reservationID int64, mentions []domain.ReservationMention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateMentions"); err != nil {
		return err
	}

	for _, m := range mentions {
		m.ID = s.id()
		m.ReservationID = reservationID
		s.data.mentions = append(s.data.mentions, m)
	}
	return nil
}

func (s *Store) CreateRequirements(ctx context.Context, reservationID int64, requirements []domain.ReservationRequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateRequirements"); err != nil {
		return err
	}

	for _, r := range requirements {
		r.ID = s.id()
		r.ReservationID = reservationID
		s.data.resReqs = append(s.data.resReqs, r)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.data.reservations {
		if r.ID == id {
			return s.joinLocked(r), nil
		}
	}
	return nil, reservation.ErrReservationNotFound
}

func (s *Store) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) ListActiveByChapel(ctx context.Context, chapelID int64, from, to time.Time) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListActiveByChapel"); err != nil {
		return nil, err
	}

	from, to = domain.DateOnly(from), domain.DateOnly(to)
	result := make([]*domain.Reservation, 0)
	for _, r := range s.data.reservations {
		date := domain.DateOnly(r.EventDate)
		if r.ChapelID == chapelID && r.IsActive() && !date.Before(from) && !date.After(to) {
			row := r
			result = append(result, &row)
		}
	}
	return result, nil
}

func (s *Store) ListByUser(ctx context.Context, filter domain.UserReservationsFilter) ([]*domain.Reservation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.Reservation, 0)
	for _, r := range s.data.reservations {
		if r.UserID != filter.UserID || !hasStatus(filter.Statuses, r.Status) {
			continue
		}
		joined := s.joinLocked(r)
		if !matchesSearch(filter.Search, joined.EventName) {
			continue
		}
		matched = append(matched, joined)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EventDate.Equal(b.EventDate) {
			if filter.PendingOrder {
				return a.EventDate.Before(b.EventDate)
			}
			return a.EventDate.After(b.EventDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return paginate(matched, filter.Pagination), len(matched), nil
}

func (s *Store) ListByParish(ctx context.Context, filter domain.ParishReservationsFilter) ([]*domain.Reservation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.Reservation, 0)
	for _, r := range s.data.reservations {
		joined := s.joinLocked(r)
		if joined.ParishID != filter.ParishID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && r.EventDate.Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && r.EventDate.After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		if !matchesSearch(filter.Search, joined.EventName) && !matchesSearch(filter.Search, joined.BeneficiaryFullName) {
			continue
		}
		matched = append(matched, joined)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.After(b.EventDate)
		}
		return a.EventTime > b.EventTime
	})

	return paginate(matched, filter.Pagination), len(matched), nil
}

func (s *Store) ListRequirements(ctx context.Context, reservationID int64) ([]domain.ReservationRequirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.ReservationRequirement, 0)
	for _, r := range s.data.resReqs {
		if r.ReservationID == reservationID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *Store) ListMentions(ctx context.Context, reservationID int64) ([]domain.ReservationMention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.ReservationMention, 0)
	for _, m := range s.data.mentions {
		if m.ReservationID == reservationID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *Store) Update(ctx context.Context, id int64, patch domain.ReservationPatch) error {
	if patch.IsEmpty() {
		return reservation.ErrEmptyPatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Update"); err != nil {
		return err
	}

	for i := range s.data.reservations {
		r := s.data.reservations[i]
		if r.ID != id {
			continue
		}
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.EventDate != nil {
			r.EventDate = domain.DateOnly(*patch.EventDate)
		}
		if patch.EventTime != nil {
			r.EventTime = *patch.EventTime
		}
		if patch.PaidAmount != nil {
			r.PaidAmount = *patch.PaidAmount
		}
		if patch.RescheduleDate != nil {
			d := domain.DateOnly(*patch.RescheduleDate)
			r.RescheduleDate = &d
		}
		if r.IsActive() && s.overlapsLocked(&r, r.ID) {
			return reservation.ErrSlotTaken
		}
		r.UpdatedAt = s.now()
		s.data.reservations[i] = r
		return nil
	}
	return reservation.ErrReservationNotFound
}

// overlapsLocked проверяет пересечение с активными бронированиями часовни, вызывается под s.mu
func (s *Store) overlapsLocked(res *domain.Reservation, ignoreID int64) bool {
	start, err := res.EventTime.Minutes()
	if err != nil {
		return false
	}
	end := start + res.DurationMinutes

	for _, r := range s.data.reservations {
		if r.ID == ignoreID || r.ChapelID != res.ChapelID || !r.IsActive() || !domain.SameDate(r.EventDate, res.EventDate) {
			continue
		}
		rStart, err := r.EventTime.Minutes()
		if err != nil {
			continue
		}
		if start < rStart+r.DurationMinutes && rStart < end {
			return true
		}
	}
	return false
}

// joinLocked дополняет бронирование данными каталога, вызывается под s.mu
func (s *Store) joinLocked(r domain.Reservation) *domain.Reservation {
	if v, ok := s.data.variants[r.EventVariantID]; ok {
		r.EventName = v.EventName
		r.VariantName = v.Name
		r.VariantPrice = v.Price
	}
	if c, ok := s.data.chapels[r.ChapelID]; ok {
		r.ChapelName = c.Name
		r.ParishID = c.ParishID
	}
	return &r
}

func hasStatus(statuses []domain.ReservationStatus, status domain.ReservationStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func matchesSearch(search, value string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func paginate[T any](rows []T, p domain.Pagination) []T {
	if p.Limit <= 0 {
		return rows
	}
	offset := p.Offset()
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
