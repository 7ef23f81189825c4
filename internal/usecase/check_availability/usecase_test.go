package check_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/service/availability"
	"github.com/m04kA/ParishReservationService/internal/testutil/memstore"
	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// 2026-10-15 четверг
var today = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func date(day int) time.Time {
	return time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (*UseCase, *memstore.Store, memstore.Fixture) {
	t.Helper()

	store := memstore.New()
	fixture := store.Seed(60)

	uc := NewUseCase(store, availability.NewService(store, store), logger.NewNop()).
		WithTimeProvider(fixedClock{now: today})

	return uc, store, fixture
}

func TestCheckAvailability(t *testing.T) {
	uc, store, fixture := setup(t)
	ctx := context.Background()

	_, err := store.Create(ctx, &domain.Reservation{
		UserID:          1,
		EventVariantID:  fixture.VariantID,
		ChapelID:        fixture.ChapelID,
		EventDate:       date(19),
		EventTime:       "10:00",
		DurationMinutes: 60,
		Status:          domain.StatusReserved,
	})
	require.NoError(t, err)

	store.AddSpecific(domain.SpecificSchedule{ChapelID: fixture.ChapelID, Date: date(20), ExceptionType: domain.ExceptionClosed})
	store.AddSpecific(domain.SpecificSchedule{
		ChapelID: fixture.ChapelID, Date: date(24), ExceptionType: domain.ExceptionOpen, StartTime: "18:00", EndTime: "20:00",
	})

	tests := []struct {
		name      string
		date      time.Time
		at        types.TimeString
		available bool
		reason    string
	}{
		{name: "free weekday slot", date: date(19), at: "08:00", available: true},
		{name: "adjacent to reservation", date: date(19), at: "11:00", available: true},
		{name: "overlaps reservation", date: date(19), at: "10:30", reason: domain.ReasonSlotTaken},
		{name: "closed exception", date: date(20), at: "09:00", reason: domain.ReasonChapelClosed},
		{name: "past date", date: date(14), at: "09:00", reason: domain.ReasonPastDate},
		{name: "today is bookable", date: date(15), at: "17:00", available: true},
		{name: "earlier today", date: date(15), at: "09:00", reason: domain.ReasonPastTime},
		{name: "starting right now", date: date(15), at: "10:00", reason: domain.ReasonPastTime},
		{name: "runs past closing", date: date(21), at: "17:30", reason: domain.ReasonInsufficientAvailability},
		{name: "weekend without schedule", date: date(25), at: "10:00", reason: domain.ReasonInsufficientAvailability},
		{name: "open exception on saturday", date: date(24), at: "18:30", available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := uc.Execute(ctx, &Request{EventVariantID: fixture.VariantID, Date: tt.date, Time: tt.at})
			require.NoError(t, err)
			assert.Equal(t, tt.available, resp.Available)
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}
}

func TestCheckAvailability_CancelledReservationFreesSlot(t *testing.T) {
	uc, store, fixture := setup(t)
	ctx := context.Background()

	res, err := store.Create(ctx, &domain.Reservation{
		EventVariantID:  fixture.VariantID,
		ChapelID:        fixture.ChapelID,
		EventDate:       date(19),
		EventTime:       "10:00",
		DurationMinutes: 60,
		Status:          domain.StatusReserved,
	})
	require.NoError(t, err)

	cancelled := domain.StatusCancelled
	require.NoError(t, store.Update(ctx, res.ID, domain.ReservationPatch{Status: &cancelled}))

	resp, err := uc.Execute(ctx, &Request{EventVariantID: fixture.VariantID, Date: date(19), Time: "10:00"})
	require.NoError(t, err)
	assert.True(t, resp.Available)
}

func TestCheckAvailability_Errors(t *testing.T) {
	uc, store, fixture := setup(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{EventVariantID: 9999, Date: date(19), Time: "10:00"})
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = uc.Execute(ctx, &Request{EventVariantID: fixture.VariantID, Date: date(19), Time: "10h"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{EventVariantID: fixture.VariantID, Time: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	store.UpdateVariant(fixture.VariantID, func(v *domain.EventVariant) { v.Active = false })
	_, err = uc.Execute(ctx, &Request{EventVariantID: fixture.VariantID, Date: date(19), Time: "10:00"})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestCheckAvailability_StorageFailure(t *testing.T) {
	uc, store, fixture := setup(t)
	store.FailOn("ListActiveByChapel", errors.New("connection refused"))

	_, err := uc.Execute(context.Background(), &Request{EventVariantID: fixture.VariantID, Date: date(19), Time: "10:00"})
	assert.ErrorIs(t, err, ErrInternal)
}
