package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
	"github.com/m04kA/ParishReservationService/internal/service/availability"
	"github.com/m04kA/ParishReservationService/internal/service/reservations/models"
	"github.com/m04kA/ParishReservationService/internal/testutil/memstore"
	"github.com/m04kA/ParishReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/metrics"
	"github.com/m04kA/ParishReservationService/pkg/ptr"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// 2026-10-15 четверг
var today = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func date(day int) time.Time {
	return time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event eventbus.ReservationEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Invalidate(ctx context.Context, chapelID int64) error {
	return m.Called(ctx, chapelID).Error(0)
}

type env struct {
	store     *memstore.Store
	fixture   memstore.Fixture
	publisher *mockPublisher
	cache     *mockCache
	svc       *Service
	booking   *create_reservation.UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memstore.New()
	fixture := store.Seed(60)
	store.AddProfile(domain.Profile{UserID: 1, FirstNames: "Rosa", PaternalSurname: "Huamán"})
	store.AddProfile(domain.Profile{UserID: 2, FirstNames: "Pedro", PaternalSurname: "Flores"})

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	cache := &mockCache{}
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()

	agenda := availability.NewService(store, store)
	clock := fixedClock{now: today}

	svc := NewService(store, agenda, store, store, cache, publisher, logger.NewNop()).WithTimeProvider(clock)
	booking := create_reservation.NewUseCase(
		store, store, store, agenda, store, store, cache, publisher,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()), logger.NewNop(),
	).WithTimeProvider(clock)

	return &env{store: store, fixture: fixture, publisher: publisher, cache: cache, svc: svc, booking: booking}
}

func (e *env) book(t *testing.T, userID int64, day int, at types.TimeString) int64 {
	t.Helper()
	resp, err := e.booking.Execute(context.Background(), &create_reservation.Request{
		UserID:         userID,
		EventVariantID: e.fixture.VariantID,
		Date:           date(day),
		Time:           at,
	})
	require.NoError(t, err)
	return resp.ReservationID
}

func (e *env) setStatus(t *testing.T, id int64, status domain.ReservationStatus) {
	t.Helper()
	require.NoError(t, e.store.Update(context.Background(), id, domain.ReservationPatch{Status: &status}))
}

func TestReservationLifecycle_BookCancelRebook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id := e.book(t, 1, 19, "10:00")

	_, err := e.booking.Execute(ctx, &create_reservation.Request{
		UserID: 2, EventVariantID: e.fixture.VariantID, Date: date(19), Time: "10:00",
	})
	require.ErrorIs(t, err, create_reservation.ErrSlotNotAvailable)

	resp, err := e.svc.Cancel(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, &models.CancelResponse{ID: id, Status: "CANCELLED"}, resp)

	e.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev eventbus.ReservationEvent) bool {
		return ev.Type == eventbus.EventReservationCancelled && ev.ReservationID == id && ev.PreviousStatus == "RESERVED"
	}))
	e.cache.AssertCalled(t, "Invalidate", mock.Anything, e.fixture.ChapelID)

	rebooked := e.book(t, 2, 19, "10:00")
	assert.NotEqual(t, id, rebooked)
}

func TestCancel_Guards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := e.svc.Cancel(ctx, 1, 9999)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("other user", func(t *testing.T) {
		id := e.book(t, 1, 19, "08:00")
		_, err := e.svc.Cancel(ctx, 2, id)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("in progress can be cancelled", func(t *testing.T) {
		id := e.book(t, 1, 19, "12:00")
		e.setStatus(t, id, domain.StatusInProgress)
		_, err := e.svc.Cancel(ctx, 1, id)
		assert.NoError(t, err)
	})

	for _, status := range []domain.ReservationStatus{
		domain.StatusCompleted, domain.StatusFulfilled, domain.StatusCancelled, domain.StatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			id := e.book(t, 1, 20, "09:00")
			e.setStatus(t, id, status)

			_, err := e.svc.Cancel(ctx, 1, id)
			assert.ErrorIs(t, err, ErrCannotCancel)

			// освобождаем слот для следующего подтеста
			if status != domain.StatusCancelled && status != domain.StatusRejected {
				e.setStatus(t, id, domain.StatusCancelled)
			}
		})
	}
}

func TestListPendingAndHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	later := e.book(t, 1, 22, "09:00")
	sooner := e.book(t, 1, 19, "09:00")
	done := e.book(t, 1, 20, "09:00")
	e.setStatus(t, done, domain.StatusCompleted)
	e.book(t, 2, 21, "09:00")

	pending, err := e.svc.ListPending(ctx, &models.ListUserReservationsRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, pending.Reservations, 2)
	assert.Equal(t, sooner, pending.Reservations[0].ID)
	assert.Equal(t, later, pending.Reservations[1].ID)
	assert.Equal(t, models.PageMetaResponse{TotalRecords: 2, TotalPages: 1, CurrentPage: 1, PerPage: 10}, pending.Meta)

	history, err := e.svc.ListHistory(ctx, &models.ListUserReservationsRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, history.Reservations, 1)
	assert.Equal(t, done, history.Reservations[0].ID)
	assert.Equal(t, "COMPLETED", history.Reservations[0].Status)

	page, err := e.svc.ListPending(ctx, &models.ListUserReservationsRequest{UserID: 1, Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Reservations, 1)
	assert.Equal(t, later, page.Reservations[0].ID)
	assert.Equal(t, 2, page.Meta.TotalPages)

	searched, err := e.svc.ListPending(ctx, &models.ListUserReservationsRequest{UserID: 1, Search: "bapt"})
	require.NoError(t, err)
	assert.Len(t, searched.Reservations, 2)

	none, err := e.svc.ListPending(ctx, &models.ListUserReservationsRequest{UserID: 1, Search: "wedding"})
	require.NoError(t, err)
	assert.Empty(t, none.Reservations)
	assert.Equal(t, 0, none.Meta.TotalPages)
}

func TestGetDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.AddRequirement(domain.RequirementBase, e.fixture.EventID, "Birth certificate", "")
	e.store.AddRequirement(domain.RequirementChapel, e.fixture.ChapelEventID, "Talk", "")

	resp, err := e.booking.Execute(ctx, &create_reservation.Request{
		UserID:         1,
		EventVariantID: e.fixture.VariantID,
		Date:           date(19),
		Time:           "09:00",
		Mentions:       []create_reservation.Mention{{MentionTypeID: 2, MentionName: "Godparents"}},
	})
	require.NoError(t, err)

	details, err := e.svc.GetDetails(ctx, 1, resp.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, "Rosa Huamán", details.BeneficiaryFullName)
	assert.Equal(t, "PENDING", details.PaymentStatus)
	assert.Equal(t, "09:00 AM", details.EventTimeDisplay)
	require.Len(t, details.Requirements, 2)
	assert.Equal(t, "BASE", details.Requirements[0].Source)
	assert.Equal(t, "CHAPEL", details.Requirements[1].Source)
	require.Len(t, details.Mentions, 1)
	assert.Equal(t, "Godparents", details.Mentions[0].MentionName)

	_, err = e.svc.GetDetails(ctx, 2, resp.ReservationID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = e.svc.AdminUpdate(ctx, e.fixture.ParishID, resp.ReservationID, &models.AdminUpdateRequest{PaidAmount: ptr.Ptr(150.0)})
	require.NoError(t, err)

	details, err = e.svc.GetDetails(ctx, 1, resp.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", details.PaymentStatus)
}

func TestAdminUpdate_Transitions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parish := e.fixture.ParishID

	id := e.book(t, 1, 19, "09:00")

	_, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{Status: ptr.Ptr("FULFILLED")})
	assert.ErrorIs(t, err, ErrInvalidTransition, "RESERVED cannot jump to FULFILLED")

	updated, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{Status: ptr.Ptr("IN_PROGRESS")})
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", updated.Status)

	updated, err = e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{Status: ptr.Ptr("fulfilled")})
	require.NoError(t, err)
	assert.Equal(t, "FULFILLED", updated.Status)

	_, err = e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{PaidAmount: ptr.Ptr(10.0)})
	assert.ErrorIs(t, err, ErrImmutable)

	e.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev eventbus.ReservationEvent) bool {
		return ev.Type == eventbus.EventReservationStatusChanged && ev.Status == "FULFILLED" && ev.PreviousStatus == "IN_PROGRESS"
	}))
}

func TestAdminUpdate_Scoping(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.book(t, 1, 19, "09:00")

	_, err := e.svc.AdminUpdate(ctx, e.fixture.ParishID+1, id, &models.AdminUpdateRequest{Status: ptr.Ptr("REJECTED")})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = e.svc.AdminUpdate(ctx, e.fixture.ParishID, id, &models.AdminUpdateRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.AdminUpdate(ctx, e.fixture.ParishID, id, &models.AdminUpdateRequest{Status: ptr.Ptr("UNKNOWN")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	rejected, err := e.svc.Reject(ctx, e.fixture.ParishID, id)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)
}

func TestAdminUpdate_Reschedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parish := e.fixture.ParishID

	id := e.book(t, 1, 19, "09:00")
	e.book(t, 2, 20, "10:00")

	t.Run("overlapping its own slot is allowed", func(t *testing.T) {
		updated, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{EventTime: ptr.Ptr(types.TimeString("09:30"))})
		require.NoError(t, err)
		assert.Equal(t, "09:30", updated.EventTime)
		require.NotNil(t, updated.RescheduleDate)
		assert.Equal(t, "2026-10-19", *updated.RescheduleDate)
	})

	t.Run("conflict with another reservation", func(t *testing.T) {
		_, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{
			EventDate: ptr.Ptr(date(20)),
			EventTime: ptr.Ptr(types.TimeString("10:30")),
		})
		require.ErrorIs(t, err, ErrSlotNotAvailable)

		var unavailableErr *domain.UnavailableError
		require.True(t, errors.As(err, &unavailableErr))
		assert.Equal(t, domain.ReasonSlotTaken, unavailableErr.Reason)
	})

	t.Run("closed date", func(t *testing.T) {
		e.store.AddSpecific(domain.SpecificSchedule{ChapelID: e.fixture.ChapelID, Date: date(21), ExceptionType: domain.ExceptionClosed})
		_, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{EventDate: ptr.Ptr(date(21))})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("past date", func(t *testing.T) {
		_, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{EventDate: ptr.Ptr(date(1))})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("slot already started today", func(t *testing.T) {
		_, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{
			EventDate: ptr.Ptr(date(15)),
			EventTime: ptr.Ptr(types.TimeString("09:00")),
		})
		require.ErrorIs(t, err, ErrSlotNotAvailable)

		var unavailableErr *domain.UnavailableError
		require.True(t, errors.As(err, &unavailableErr))
		assert.Equal(t, domain.ReasonPastTime, unavailableErr.Reason)
	})

	t.Run("moved to a free date", func(t *testing.T) {
		updated, err := e.svc.AdminUpdate(ctx, parish, id, &models.AdminUpdateRequest{EventDate: ptr.Ptr(date(22))})
		require.NoError(t, err)
		assert.Equal(t, "2026-10-22", updated.EventDate)
		assert.Equal(t, "2026-10-19", *updated.RescheduleDate)
		assert.Contains(t, e.store.Locks, "1:2026-10-22")
	})
}

func TestListForParish(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.book(t, 1, 19, "09:00")
	second := e.book(t, 2, 21, "09:00")
	e.setStatus(t, second, domain.StatusInProgress)

	all, err := e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{ParishID: e.fixture.ParishID})
	require.NoError(t, err)
	require.Len(t, all.Reservations, 2)
	assert.Equal(t, second, all.Reservations[0].ID, "newest event date first")

	byStatus, err := e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{
		ParishID: e.fixture.ParishID, Status: ptr.Ptr("RESERVED"),
	})
	require.NoError(t, err)
	require.Len(t, byStatus.Reservations, 1)
	assert.Equal(t, first, byStatus.Reservations[0].ID)

	byBeneficiary, err := e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{
		ParishID: e.fixture.ParishID, Search: "pedro",
	})
	require.NoError(t, err)
	require.Len(t, byBeneficiary.Reservations, 1)
	assert.Equal(t, second, byBeneficiary.Reservations[0].ID)

	byDate, err := e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{
		ParishID: e.fixture.ParishID, StartDate: ptr.Ptr(date(20)), EndDate: ptr.Ptr(date(25)),
	})
	require.NoError(t, err)
	assert.Len(t, byDate.Reservations, 1)

	other, err := e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{ParishID: 99})
	require.NoError(t, err)
	assert.Empty(t, other.Reservations)

	_, err = e.svc.ListForParish(ctx, &models.ListParishReservationsRequest{
		ParishID: e.fixture.ParishID, StartDate: ptr.Ptr(date(25)), EndDate: ptr.Ptr(date(20)),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_StorageFailureIsInternal(t *testing.T) {
	e := newEnv(t)
	id := e.book(t, 1, 19, "09:00")
	e.store.FailOn("Update", errors.New("connection reset"))

	_, err := e.svc.Cancel(context.Background(), 1, id)
	assert.ErrorIs(t, err, ErrInternal)

	r, err := e.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReserved, r.Status)
}
