package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/internal/testutil/memstore"
	"github.com/m04kA/ParishReservationService/pkg/logger"
)

func TestGetFormInfo(t *testing.T) {
	store := memstore.New()
	fixture := store.Seed(60)
	store.AddRequirement(domain.RequirementBase, fixture.EventID, "Birth certificate", "Original copy")
	store.AddRequirement(domain.RequirementChapel, fixture.ChapelEventID, "Pre-baptism talk", "")

	svc := NewService(store, logger.NewNop())

	info, err := svc.GetFormInfo(context.Background(), fixture.VariantID)
	require.NoError(t, err)
	assert.Equal(t, "San José", info.ChapelName)
	assert.Equal(t, "Parroquia San José", info.ParishName)
	assert.Equal(t, "Baptism", info.EventName)
	assert.Equal(t, "Standard", info.VariantName)
	assert.Equal(t, 150.0, info.Price)
	assert.Equal(t, 60, info.DurationMinutes)
	require.Len(t, info.Requirements, 2)
	assert.Equal(t, "BASE", info.Requirements[0].Source)
	assert.Equal(t, "CHAPEL", info.Requirements[1].Source)
}

func TestGetFormInfo_Inactive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *domain.EventVariant)
	}{
		{name: "variant", mutate: func(v *domain.EventVariant) { v.Active = false }},
		{name: "chapel event", mutate: func(v *domain.EventVariant) { v.ChapelEventActive = false }},
		{name: "chapel", mutate: func(v *domain.EventVariant) { v.ChapelActive = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			fixture := store.Seed(60)
			store.UpdateVariant(fixture.VariantID, tt.mutate)

			_, err := NewService(store, logger.NewNop()).GetFormInfo(context.Background(), fixture.VariantID)
			assert.ErrorIs(t, err, ErrVariantNotFound)
		})
	}
}

func TestGetFormInfo_Errors(t *testing.T) {
	store := memstore.New()
	fixture := store.Seed(60)
	svc := NewService(store, logger.NewNop())

	_, err := svc.GetFormInfo(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrVariantNotFound)

	store.FailOn("GetEventVariant", errors.New("connection reset"))
	_, err = svc.GetFormInfo(context.Background(), fixture.VariantID)
	assert.ErrorIs(t, err, ErrInternal)
}
