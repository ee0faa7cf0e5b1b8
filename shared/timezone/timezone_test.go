package timezone_test

import (
	"testing"
	"time"

	"hotelops/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimezoneInit(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
}

func TestTimezoneFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.NotEmpty(t, timezone.Format(testTime, "2006-01-02 15:04:05 MST"))

	parsed, err := timezone.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, parsed.IsZero())
}

func TestDay(t *testing.T) {
	day := timezone.Day(time.Now())

	assert.Equal(t, time.UTC, day.Location())
	assert.Zero(t, day.Hour())
	assert.Zero(t, day.Minute())
	assert.Equal(t, day, timezone.Day(day.Add(-time.Nanosecond).Add(time.Nanosecond)))
	assert.Equal(t, timezone.Today(), timezone.Day(time.Now()))
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "2025-03-01", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{value: "2024-02-29", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{value: "2025-02-29", wantErr: true},
		{value: "01-03-2025", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := timezone.ParseDay(tt.value)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.value, timezone.FormatDay(got))
		})
	}
}
