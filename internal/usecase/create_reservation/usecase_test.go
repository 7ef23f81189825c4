package create_reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	reservationRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
	"github.com/m04kA/ParishReservationService/internal/service/availability"
	"github.com/m04kA/ParishReservationService/internal/testutil/memstore"
	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/metrics"
	"github.com/m04kA/ParishReservationService/pkg/ptr"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// 2026-10-15 четверг; 2026-10-19 понедельник
var (
	today  = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event eventbus.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type countingCache struct {
	mu          sync.Mutex
	invalidated []int64
}

func (c *countingCache) Invalidate(ctx context.Context, chapelID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, chapelID)
	return nil
}

type env struct {
	store     *memstore.Store
	fixture   memstore.Fixture
	cache     *countingCache
	publisher *mockPublisher
	uc        *UseCase
}

func newEnv(t *testing.T, durationMinutes int) *env {
	t.Helper()

	store := memstore.New()
	fixture := store.Seed(durationMinutes)
	store.AddProfile(domain.Profile{UserID: 1, FirstNames: "Ana María", PaternalSurname: "Quispe", MaternalSurname: ptr.Ptr("Rojas")})

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	cache := &countingCache{}

	uc := NewUseCase(
		store,
		store,
		store,
		availability.NewService(store, store),
		store,
		store,
		cache,
		publisher,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		logger.NewNop(),
	).WithTimeProvider(fixedClock{now: today})

	return &env{store: store, fixture: fixture, cache: cache, publisher: publisher, uc: uc}
}

func (e *env) request(userID int64, date time.Time, at types.TimeString) *Request {
	return &Request{
		UserID:         userID,
		EventVariantID: e.fixture.VariantID,
		Date:           date,
		Time:           at,
	}
}

func unavailableReason(t *testing.T, err error) string {
	t.Helper()
	var unavailableErr *domain.UnavailableError
	require.True(t, errors.As(err, &unavailableErr), "expected UnavailableError, got %v", err)
	return unavailableErr.Reason
}

func TestCreateReservation_Success(t *testing.T) {
	e := newEnv(t, 60)
	e.store.AddRequirement(domain.RequirementBase, e.fixture.EventID, "Birth certificate", "")
	e.store.AddRequirement(domain.RequirementChapel, e.fixture.ChapelEventID, "Pre-baptism talk", "Saturday 10:00")

	req := e.request(1, monday, "09:00")
	req.Mentions = []Mention{{MentionTypeID: 3, MentionName: "  Grandparents  "}}

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.NotZero(t, resp.ReservationID)
	assert.Equal(t, "RESERVED", resp.Status)
	assert.Equal(t, "Ana María Quispe Rojas", resp.BeneficiaryFullName)
	assert.Equal(t, "Your reservation is confirmed for Baptism on 19/10/2026 at 09:00 AM", resp.ConfirmationMessage)

	ctx := context.Background()
	reqs, err := e.store.ListRequirements(ctx, resp.ReservationID)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.NotNil(t, reqs[0].BaseRequirementID)
	assert.NotNil(t, reqs[1].ChapelRequirementID)
	assert.False(t, reqs[0].Completed)

	mentions, err := e.store.ListMentions(ctx, resp.ReservationID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, "Grandparents", mentions[0].MentionName)

	assert.Equal(t, []int64{e.fixture.ChapelID}, e.cache.invalidated)
	assert.Contains(t, e.store.Locks, "1:2026-10-19")
	e.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev eventbus.ReservationEvent) bool {
		return ev.Type == eventbus.EventReservationCreated && ev.ReservationID == resp.ReservationID
	}))
}

func TestCreateReservation_ExplicitBeneficiaryWins(t *testing.T) {
	e := newEnv(t, 60)

	req := e.request(1, monday, "09:00")
	req.BeneficiaryFullName = ptr.Ptr("  Lucía Mamani  ")

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Lucía Mamani", resp.BeneficiaryFullName)
}

func TestCreateReservation_BeneficiaryRequired(t *testing.T) {
	e := newEnv(t, 60)

	req := e.request(2, monday, "09:00") // у пользователя 2 нет профиля
	req.BeneficiaryFullName = ptr.Ptr("   ")

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBeneficiaryRequired)
	assert.Empty(t, e.store.Reservations())
}

func TestCreateReservation_OverlapRejected(t *testing.T) {
	e := newEnv(t, 60)
	ctx := context.Background()

	_, err := e.uc.Execute(ctx, e.request(1, monday, "10:00"))
	require.NoError(t, err)

	cases := []struct {
		name string
		at   types.TimeString
	}{
		{"same start", "10:00"},
		{"starts inside", "10:30"},
		{"ends inside", "09:30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.uc.Execute(ctx, e.request(1, monday, tc.at))
			require.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.Equal(t, domain.ReasonSlotTaken, unavailableReason(t, err))
		})
	}

	// соседний интервал не пересекается
	_, err = e.uc.Execute(ctx, e.request(1, monday, "11:00"))
	assert.NoError(t, err)
}

func TestCreateReservation_PastDate(t *testing.T) {
	e := newEnv(t, 60)

	_, err := e.uc.Execute(context.Background(), e.request(1, today.AddDate(0, 0, -3), "09:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonPastDate, unavailableReason(t, err))
}

func TestCreateReservation_StartedSlotToday(t *testing.T) {
	e := newEnv(t, 60)
	ctx := context.Background()
	todayDate := domain.DateOnly(today)

	_, err := e.uc.Execute(ctx, e.request(1, todayDate, "09:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonPastTime, unavailableReason(t, err))

	_, err = e.uc.Execute(ctx, e.request(1, todayDate, "10:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonPastTime, unavailableReason(t, err))

	_, err = e.uc.Execute(ctx, e.request(1, todayDate, "15:00"))
	assert.NoError(t, err)
}

func TestCreateReservation_ClosedException(t *testing.T) {
	e := newEnv(t, 60)
	e.store.AddSpecific(domain.SpecificSchedule{
		ChapelID:      e.fixture.ChapelID,
		Date:          monday,
		ExceptionType: domain.ExceptionClosed,
		Reason:        "Patron saint festivity",
	})

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonChapelClosed, unavailableReason(t, err))
}

func TestCreateReservation_DurationMustFit(t *testing.T) {
	e := newEnv(t, 90)

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "17:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonInsufficientAvailability, unavailableReason(t, err))

	_, err = e.uc.Execute(context.Background(), e.request(1, monday, "16:30"))
	assert.NoError(t, err)
}

func TestCreateReservation_InactiveVariant(t *testing.T) {
	e := newEnv(t, 60)
	e.store.UpdateVariant(e.fixture.VariantID, func(v *domain.EventVariant) { v.ChapelEventActive = false })

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestCreateReservation_Validation(t *testing.T) {
	e := newEnv(t, 60)

	cases := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"zero user", func(r *Request) { r.UserID = 0 }},
		{"zero variant", func(r *Request) { r.EventVariantID = 0 }},
		{"missing date", func(r *Request) { r.Date = time.Time{} }},
		{"bad time", func(r *Request) { r.Time = "25:00" }},
		{"mention without type", func(r *Request) { r.Mentions = []Mention{{MentionName: "x"}} }},
		{"blank mention name", func(r *Request) { r.Mentions = []Mention{{MentionTypeID: 1, MentionName: "  "}} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := e.request(1, monday, "09:00")
			tc.mutate(req)
			_, err := e.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateReservation_RollbackOnFailure(t *testing.T) {
	e := newEnv(t, 60)
	e.store.AddRequirement(domain.RequirementBase, e.fixture.EventID, "Birth certificate", "")
	e.store.FailOn("CreateRequirements", errors.New("connection reset"))

	req := e.request(1, monday, "09:00")
	req.Mentions = []Mention{{MentionTypeID: 1, MentionName: "Parents"}}

	_, err := e.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInternal)

	assert.Empty(t, e.store.Reservations())
	assert.Empty(t, e.cache.invalidated)
	e.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	// после отката слот свободен
	_, err = e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	assert.NoError(t, err)
}

func TestCreateReservation_RequirementsAreSnapshots(t *testing.T) {
	e := newEnv(t, 60)
	ctx := context.Background()
	baseID := e.store.AddRequirement(domain.RequirementBase, e.fixture.EventID, "Birth certificate", "Original copy")

	first, err := e.uc.Execute(ctx, e.request(1, monday, "09:00"))
	require.NoError(t, err)

	// каталог меняется после бронирования
	e.store.UpdateRequirement(baseID, "Birth certificate (apostilled)", false)
	e.store.AddRequirement(domain.RequirementBase, e.fixture.EventID, "Godparents ID", "")

	reqs, err := e.store.ListRequirements(ctx, first.ReservationID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Birth certificate", reqs[0].Name)
	assert.Equal(t, "Original copy", reqs[0].Description)

	// новое бронирование получает текущий набор
	second, err := e.uc.Execute(ctx, e.request(1, monday, "11:00"))
	require.NoError(t, err)

	reqs, err = e.store.ListRequirements(ctx, second.ReservationID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Godparents ID", reqs[0].Name)
}

func TestCreateReservation_ConcurrentBookingsOfOneSlot(t *testing.T) {
	e := newEnv(t, 60)
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)

	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := e.uc.Execute(context.Background(), e.request(1, monday, "10:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotNotAvailable), errors.Is(err, ErrSlotTaken):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, rejected)
	assert.Len(t, e.store.Reservations(), 1)
}

func TestCreateReservation_ConcurrentOverlappingIntervals(t *testing.T) {
	e := newEnv(t, 60)
	times := []types.TimeString{"09:30", "09:00", "10:00", "09:45", "10:15"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(at types.TimeString) {
			defer wg.Done()
			_, _ = e.uc.Execute(context.Background(), e.request(1, monday, at))
		}(times[i%len(times)])
	}
	wg.Wait()

	reservations := e.store.Reservations()
	require.NotEmpty(t, reservations)
	assertNoOverlap(t, reservations)
}

func assertNoOverlap(t *testing.T, reservations []domain.Reservation) {
	t.Helper()
	for i := range reservations {
		for j := i + 1; j < len(reservations); j++ {
			a, b := reservations[i], reservations[j]
			if a.ChapelID != b.ChapelID || !domain.SameDate(a.EventDate, b.EventDate) {
				continue
			}
			aStart, _ := a.EventTime.Minutes()
			bStart, _ := b.EventTime.Minutes()
			overlap := aStart < bStart+b.DurationMinutes && bStart < aStart+a.DurationMinutes
			assert.False(t, overlap, "reservations %d and %d overlap", a.ID, b.ID)
		}
	}
}

// Вместимость варианта не делает слот общим: второе бронирование того же
// интервала отклоняется даже при MaxCapacity > 1
func TestCreateReservation_CapacityDoesNotShareSlot(t *testing.T) {
	e := newEnv(t, 60)
	e.store.UpdateVariant(e.fixture.VariantID, func(v *domain.EventVariant) { v.MaxCapacity = 5 })

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.ReasonSlotTaken, unavailableReason(t, err))
}

func TestCreateReservation_ConstraintViolationIsSlotTaken(t *testing.T) {
	e := newEnv(t, 60)
	e.store.FailOn("Create", reservationRepo.ErrSlotTaken)

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, domain.ReasonSlotNoLongerAvailable, unavailableReason(t, err))
}

type exhaustedTx struct{}

func (exhaustedTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return txmanager.ErrRetriesExhausted
}

func TestCreateReservation_RetriesExhaustedIsSlotTaken(t *testing.T) {
	e := newEnv(t, 60)
	e.uc.txManager = exhaustedTx{}

	_, err := e.uc.Execute(context.Background(), e.request(1, monday, "09:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}
