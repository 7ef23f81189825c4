package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
	"github.com/m04kA/ParishReservationService/internal/testutil/memstore"
	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/ptr"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

type mockCache struct{ mock.Mock }

func (m *mockCache) Invalidate(ctx context.Context, chapelID int64) error {
	return m.Called(ctx, chapelID).Error(0)
}

func date(day int) time.Time {
	return time.Date(2026, 11, day, 0, 0, 0, 0, time.UTC)
}

func tp(s string) *types.TimeString {
	return ptr.Ptr(types.TimeString(s))
}

func newService(t *testing.T) (*Service, *memstore.Store, memstore.Fixture, *mockCache) {
	t.Helper()

	store := memstore.New()
	fixture := store.Seed(60)

	cache := &mockCache{}
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()

	return NewService(store, store, store, store, cache, logger.NewNop()), store, fixture, cache
}

func TestListGeneral(t *testing.T) {
	svc, store, fixture, _ := newService(t)
	store.AddGeneral(fixture.ChapelID, 1, "06:00", "07:00")

	resp, err := svc.ListGeneral(context.Background(), fixture.ChapelID)
	require.NoError(t, err)
	require.Len(t, resp.Schedules, 6)
	assert.Equal(t, 1, resp.Schedules[0].DayOfWeek)
	assert.Equal(t, "06:00", resp.Schedules[0].StartTime)
	assert.Equal(t, "08:00", resp.Schedules[1].StartTime)
	assert.Equal(t, 5, resp.Schedules[5].DayOfWeek)

	_, err = svc.ListGeneral(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrChapelNotFound)
}

func TestReplaceGeneral(t *testing.T) {
	svc, _, fixture, cache := newService(t)
	ctx := context.Background()

	resp, err := svc.ReplaceGeneral(ctx, &models.ReplaceGeneralRequest{
		ParishID: fixture.ParishID,
		ChapelID: fixture.ChapelID,
		Blocks: []models.GeneralBlock{
			{DayOfWeek: 6, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 6, StartTime: "15:00", EndTime: "18:00"},
			{DayOfWeek: 0, StartTime: "10:00", EndTime: "13:00"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Schedules, 3)
	cache.AssertCalled(t, "Invalidate", mock.Anything, fixture.ChapelID)

	list, err := svc.ListGeneral(ctx, fixture.ChapelID)
	require.NoError(t, err)
	require.Len(t, list.Schedules, 3, "previous Mon-Fri blocks are replaced")
	assert.Equal(t, 0, list.Schedules[0].DayOfWeek)
}

func TestReplaceGeneral_Validation(t *testing.T) {
	svc, _, fixture, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		blocks []models.GeneralBlock
	}{
		{name: "day out of range", blocks: []models.GeneralBlock{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}}},
		{name: "end before start", blocks: []models.GeneralBlock{{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}}},
		{name: "empty interval", blocks: []models.GeneralBlock{{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"}}},
		{name: "bad time", blocks: []models.GeneralBlock{{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}}},
		{name: "duplicate start", blocks: []models.GeneralBlock{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReplaceGeneral(ctx, &models.ReplaceGeneralRequest{
				ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Blocks: tt.blocks,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestReplaceGeneral_RollbackOnFailure(t *testing.T) {
	svc, store, fixture, _ := newService(t)
	ctx := context.Background()
	store.FailOn("ReplaceGeneral", errors.New("disk full"))

	_, err := svc.ReplaceGeneral(ctx, &models.ReplaceGeneralRequest{
		ParishID: fixture.ParishID,
		ChapelID: fixture.ChapelID,
		Blocks:   []models.GeneralBlock{{DayOfWeek: 6, StartTime: "09:00", EndTime: "12:00"}},
	})
	require.ErrorIs(t, err, ErrInternal)

	list, err := svc.ListGeneral(ctx, fixture.ChapelID)
	require.NoError(t, err)
	assert.Len(t, list.Schedules, 5)
}

func TestReplaceGeneral_OtherParish(t *testing.T) {
	svc, _, fixture, _ := newService(t)

	_, err := svc.ReplaceGeneral(context.Background(), &models.ReplaceGeneralRequest{
		ParishID: fixture.ParishID + 1,
		ChapelID: fixture.ChapelID,
	})
	assert.ErrorIs(t, err, ErrChapelNotFound)
}

func TestSpecific_CreateAndConflicts(t *testing.T) {
	svc, store, fixture, _ := newService(t)
	ctx := context.Background()

	closed, err := svc.CreateSpecific(ctx, &models.SpecificRequest{
		ParishID:      fixture.ParishID,
		ChapelID:      fixture.ChapelID,
		Date:          date(2),
		ExceptionType: "closed",
		StartTime:     tp("09:00"),
		EndTime:       tp("10:00"),
		Reason:        "  All Souls  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", closed.ExceptionType)
	assert.Equal(t, "All Souls", closed.Reason)
	assert.Nil(t, closed.StartTime, "CLOSED keeps no times")
	assert.Contains(t, store.Locks, "1:2026-11-02")

	_, err = svc.CreateSpecific(ctx, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(2),
		ExceptionType: "OPEN", StartTime: tp("18:00"), EndTime: tp("20:00"),
	})
	assert.ErrorIs(t, err, ErrScheduleConflict)

	// два OPEN окна на одну дату допустимы
	for _, window := range [][2]string{{"08:00", "10:00"}, {"18:00", "20:00"}} {
		_, err := svc.CreateSpecific(ctx, &models.SpecificRequest{
			ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(7),
			ExceptionType: "OPEN", StartTime: tp(window[0]), EndTime: tp(window[1]),
		})
		require.NoError(t, err)
	}

	_, err = svc.CreateSpecific(ctx, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(7), ExceptionType: "CLOSED",
	})
	assert.ErrorIs(t, err, ErrScheduleConflict)
}

func TestSpecific_Validation(t *testing.T) {
	svc, _, fixture, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SpecificRequest
	}{
		{name: "missing date", req: models.SpecificRequest{ExceptionType: "CLOSED"}},
		{name: "unknown type", req: models.SpecificRequest{Date: date(3), ExceptionType: "HOLIDAY"}},
		{name: "open without times", req: models.SpecificRequest{Date: date(3), ExceptionType: "OPEN"}},
		{name: "open with reversed times", req: models.SpecificRequest{
			Date: date(3), ExceptionType: "OPEN", StartTime: tp("12:00"), EndTime: tp("11:00"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.ParishID, req.ChapelID = fixture.ParishID, fixture.ChapelID
			_, err := svc.CreateSpecific(ctx, &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSpecific_UpdateDeleteScoped(t *testing.T) {
	svc, store, fixture, _ := newService(t)
	ctx := context.Background()
	otherChapel := store.AddChapel(fixture.ParishID, "Capilla Santa Ana")

	created, err := svc.CreateSpecific(ctx, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(4),
		ExceptionType: "OPEN", StartTime: tp("18:00"), EndTime: tp("20:00"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSpecific(ctx, created.ID, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(4),
		ExceptionType: "OPEN", StartTime: tp("17:00"), EndTime: tp("21:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "17:00", *updated.StartTime)

	// смена типа на CLOSED не конфликтует сама с собой
	updated, err = svc.UpdateSpecific(ctx, created.ID, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, Date: date(4), ExceptionType: "CLOSED",
	})
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", updated.ExceptionType)

	_, err = svc.UpdateSpecific(ctx, created.ID, &models.SpecificRequest{
		ParishID: fixture.ParishID, ChapelID: otherChapel, Date: date(4), ExceptionType: "CLOSED",
	})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	err = svc.DeleteSpecific(ctx, fixture.ParishID, otherChapel, created.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	require.NoError(t, svc.DeleteSpecific(ctx, fixture.ParishID, fixture.ChapelID, created.ID))

	err = svc.DeleteSpecific(ctx, fixture.ParishID, fixture.ChapelID, created.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestListSpecific(t *testing.T) {
	svc, store, fixture, _ := newService(t)
	ctx := context.Background()

	for day := 1; day <= 6; day++ {
		exceptionType := domain.ExceptionClosed
		if day%2 == 0 {
			exceptionType = domain.ExceptionOpen
		}
		store.AddSpecific(domain.SpecificSchedule{
			ChapelID: fixture.ChapelID, Date: date(day), ExceptionType: exceptionType,
			StartTime: "18:00", EndTime: "20:00",
		})
	}

	page, err := svc.ListSpecific(ctx, &models.ListSpecificRequest{ParishID: fixture.ParishID, ChapelID: fixture.ChapelID})
	require.NoError(t, err)
	require.Len(t, page.Schedules, 4, "default page size")
	assert.Equal(t, "2026-11-06", page.Schedules[0].Date)
	assert.Equal(t, models.PageMetaResponse{TotalRecords: 6, TotalPages: 2, CurrentPage: 1, PerPage: 4}, page.Meta)

	open, err := svc.ListSpecific(ctx, &models.ListSpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, ExceptionType: ptr.Ptr("open"),
		StartDate: ptr.Ptr(date(3)), EndDate: ptr.Ptr(date(6)),
	})
	require.NoError(t, err)
	require.Len(t, open.Schedules, 2)
	assert.Equal(t, "2026-11-06", open.Schedules[0].Date)
	assert.Equal(t, "2026-11-04", open.Schedules[1].Date)

	_, err = svc.ListSpecific(ctx, &models.ListSpecificRequest{
		ParishID: fixture.ParishID, ChapelID: fixture.ChapelID, ExceptionType: ptr.Ptr("weekly"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
