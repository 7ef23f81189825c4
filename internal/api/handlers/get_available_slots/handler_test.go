package get_available_slots

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/ParishReservationService/internal/domain"
	getAvailableSlots "github.com/m04kA/ParishReservationService/internal/usecase/get_available_slots"
	"github.com/m04kA/ParishReservationService/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*getAvailableSlots.Response)
	return resp, args.Error(1)
}

func serve(uc *mockUseCase, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/event-variants/{variantId}/available-slots", NewHandler(uc, logger.NewNop()).Handle)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_GroupsSlotsByDate(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	wednesday := monday.AddDate(0, 0, 2)

	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &getAvailableSlots.Request{EventVariantID: 7, StartDate: monday, EndDate: wednesday}).
		Return(&getAvailableSlots.Response{
			AvailableDates: []time.Time{monday, wednesday},
			Days: []domain.DaySlots{
				{Date: monday, Slots: []domain.AvailableSlot{{Date: monday, Time: "09:00"}, {Date: monday, Time: "14:00"}}},
				{Date: wednesday, Slots: []domain.AvailableSlot{{Date: wednesday, Time: "10:00"}}},
			},
			TotalSlots: 3,
		}, nil)

	rec := serve(uc, "/event-variants/7/available-slots?startDate=2026-10-19&endDate=2026-10-21")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"availableDates": ["2026-10-19", "2026-10-21"],
		"slotsByDate": {
			"2026-10-19": [{"time": "09:00", "timeDisplay": "09:00 AM"}, {"time": "14:00", "timeDisplay": "02:00 PM"}],
			"2026-10-21": [{"time": "10:00", "timeDisplay": "10:00 AM"}]
		},
		"totalSlots": 3
	}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		err     error
		status  int
		message string
	}{
		{name: "bad variant", target: "/event-variants/x/available-slots?startDate=2026-10-19&endDate=2026-10-21",
			status: http.StatusBadRequest, message: msgInvalidVariantID},
		{name: "missing end", target: "/event-variants/7/available-slots?startDate=2026-10-19",
			status: http.StatusBadRequest, message: "endDate is required"},
		{name: "range too large", target: "/event-variants/7/available-slots?startDate=2026-10-19&endDate=2027-03-01",
			err: fmt.Errorf("%w: range cannot exceed 90 days", getAvailableSlots.ErrRangeTooLarge), status: http.StatusBadRequest, message: msgRangeTooLarge},
		{name: "inverted range", target: "/event-variants/7/available-slots?startDate=2026-10-21&endDate=2026-10-19",
			err: getAvailableSlots.ErrInvalidDateRange, status: http.StatusBadRequest, message: msgInvalidDateRange},
		{name: "variant not found", target: "/event-variants/7/available-slots?startDate=2026-10-19&endDate=2026-10-21",
			err: getAvailableSlots.ErrVariantNotFound, status: http.StatusNotFound, message: msgVariantNotFound},
		{name: "internal", target: "/event-variants/7/available-slots?startDate=2026-10-19&endDate=2026-10-21",
			err: getAvailableSlots.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Maybe()

			rec := serve(uc, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}
