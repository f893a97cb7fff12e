package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		value    string
		meridiem string
		want     string
	}{
		{"14:30", "", "14:30"},
		{"9:05", "", "09:05"},
		{"00:00", "", "00:00"},
		{"2:30", "PM", "14:30"},
		{"02:30", "pm", "14:30"},
		{"12:00", "AM", "00:00"},
		{"12:15", "PM", "12:15"},
		{"11:59 pm", "", "23:59"},
		{"7:45AM", "", "07:45"},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.value, tt.meridiem)
		require.NoError(t, err, "%q %q", tt.value, tt.meridiem)
		assert.Equal(t, tt.want, got, "%q %q", tt.value, tt.meridiem)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	tests := []struct {
		value    string
		meridiem string
	}{
		{"", ""},
		{"25:00", ""},
		{"noon", ""},
		{"13:00", "PM"},
		{"2:30 PM", "PM"},
		{"2:30", "XM"},
	}

	for _, tt := range tests {
		_, err := ParseClock(tt.value, tt.meridiem)
		assert.Error(t, err, "%q %q", tt.value, tt.meridiem)
	}
}

func TestFormatTime12(t *testing.T) {
	assert.Equal(t, "", FormatTime12("", nil))
	assert.Equal(t, "02:05 PM", FormatTime12("14:05", nil))
	assert.Equal(t, "12:00 AM", FormatTime12("00:00", nil))
	assert.Equal(t, "12:30 PM", FormatTime12("12:30", nil))
	assert.Equal(t, "09:15 AM", FormatTime12("2024-05-01T09:15:00Z", time.UTC))
	assert.Equal(t, "whenever", FormatTime12("whenever", nil))
}
