package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), ts)

	ts, err = NewTimeStringFromString("18:45:00")
	require.NoError(t, err)
	assert.Equal(t, TimeString("18:45"), ts)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("9h")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestParseTimeString(t *testing.T) {
	ts, err := ParseTimeString("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:05"), ts)

	for _, in := range []string{"9:05", "10:00:59", "24:00", "10:60", "10-00", " 10:00", ""} {
		_, err := ParseTimeString(in)
		assert.ErrorIs(t, err, ErrInvalidTimeString, in)
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts, err := TimeString("10:15").AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:45"), ts)

	_, err = TimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("21:00").IsAfter("06:00"))
	assert.False(t, TimeString("bad").IsAfter("06:00"))
}

func TestTimeString_Display(t *testing.T) {
	assert.Equal(t, "06:00 AM", TimeString("06:00").Display())
	assert.Equal(t, "12:00 PM", TimeString("12:00").Display())
	assert.Equal(t, "09:00 PM", TimeString("21:00").Display())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("07:05:00")))
	assert.Equal(t, TimeString("07:05"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 16, 20, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("16:20"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_On(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at, err := TimeString("10:30").On(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC), at)
}
