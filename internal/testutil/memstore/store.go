// Package memstore is an in-memory stand-in for the PostgreSQL repositories,
// the advisory locker and the transaction manager. Transactions are fully
// serialised by one mutex and roll back by restoring a snapshot, which makes
// it suitable for concurrency tests of the booking protocol.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

type requirementRow struct {
	ownerID int64 // event_id для BASE, chapel_event_id для CHAPEL
	active  bool
	source  domain.RequirementSource
}

type state struct {
	chapels      map[int64]domain.Chapel
	variants     map[int64]domain.EventVariant
	profiles     map[int64]domain.Profile
	requirements []requirementRow
	general      []domain.GeneralSchedule
	specific     []domain.SpecificSchedule
	reservations []domain.Reservation
	mentions     []domain.ReservationMention
	resReqs      []domain.ReservationRequirement
	nextID       int64
}

func (s *state) clone() *state {
	c := &state{
		chapels:      make(map[int64]domain.Chapel, len(s.chapels)),
		variants:     make(map[int64]domain.EventVariant, len(s.variants)),
		profiles:     make(map[int64]domain.Profile, len(s.profiles)),
		requirements: append([]requirementRow(nil), s.requirements...),
		general:      append([]domain.GeneralSchedule(nil), s.general...),
		specific:     append([]domain.SpecificSchedule(nil), s.specific...),
		reservations: append([]domain.Reservation(nil), s.reservations...),
		mentions:     append([]domain.ReservationMention(nil), s.mentions...),
		resReqs:      append([]domain.ReservationRequirement(nil), s.resReqs...),
		nextID:       s.nextID,
	}
	for k, v := range s.chapels {
		c.chapels[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	return c
}

// Store in-memory data of every repository
type Store struct {
	txMu sync.Mutex // держится на всё время транзакции
	mu   sync.Mutex // защищает data

	data  *state
	now   func() time.Time
	fails map[string]error

	Locks []string // журнал взятых блокировок "chapel:date"
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		data: &state{
			chapels:  make(map[int64]domain.Chapel),
			variants: make(map[int64]domain.EventVariant),
			profiles: make(map[int64]domain.Profile),
		},
		now:   time.Now,
		fails: make(map[string]error),
	}
}

// FailOn заставляет операцию op вернуть err при следующем вызове
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[op] = err
}

// failure вызывается под s.mu
func (s *Store) failure(op string) error {
	if err, ok := s.fails[op]; ok {
		delete(s.fails, op)
		return err
	}
	return nil
}

// id выдает следующий идентификатор, вызывается под s.mu
func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Do выполняет fn в транзакции
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции; транзакции хранилища всегда последовательны
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// LockChapelDate записывает блокировку в журнал; взаимное исключение дает сама транзакция
func (s *Store) LockChapelDate(ctx context.Context, chapelID int64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("LockChapelDate"); err != nil {
		return err
	}
	s.Locks = append(s.Locks, lockKey(chapelID, date))
	return nil
}

func lockKey(chapelID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", chapelID, date.Format(domain.DateFormat))
}

// SetClock задает источник времени для created_at/updated_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
