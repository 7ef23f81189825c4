package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weekly.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadWeeklyFile(t *testing.T) {
	path := writeFile(t, `
schedules:
  - dayOfWeek: 0
    startTime: "07:00:00"
    endTime: "09:30"
  - dayOfWeek: 3
    startTime: "16:00"
    endTime: "19:00"
`)

	blocks, err := readWeeklyFile(path)
	require.NoError(t, err)
	assert.Equal(t, []models.GeneralBlock{
		{DayOfWeek: 0, StartTime: "07:00", EndTime: "09:30"},
		{DayOfWeek: 3, StartTime: "16:00", EndTime: "19:00"},
	}, blocks)
}

func TestReadWeeklyFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: "schedules: []\n"},
		{name: "not yaml", body: "schedules: [\n"},
		{name: "bad time", body: "schedules:\n  - dayOfWeek: 1\n    startTime: \"8am\"\n    endTime: \"10:00\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readWeeklyFile(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := readWeeklyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
