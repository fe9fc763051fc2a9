package timestamp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00"},
		{"sub-minute", 42, "00:42"},
		{"minutes", 90, "01:30"},
		{"fractional floors", 90.9, "01:30"},
		{"just under an hour", 3599, "59:59"},
		{"exactly an hour", 3600, "01:00:00"},
		{"hours", 3725, "01:02:05"},
		{"double digit hours", 36000, "10:00:00"},
		{"negative", -5, "00:00"},
		{"nan", math.NaN(), "00:00"},
		{"infinity", math.Inf(1), "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.seconds))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"seconds only", "45", 45},
		{"minutes and seconds", "01:30", 90},
		{"unpadded minutes", "5:00", 300},
		{"hours", "01:02:05", 3725},
		{"whitespace", " 02:00 ", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	// Malformed input must return 0 with a MalformedTimestamp error, never panic.
	malformed := []string{"", "ab:cd", "1:2:3:4", "12:-01", "one:30", ":"}

	for _, input := range malformed {
		got, err := Parse(input)
		assert.Zero(t, got, "input %q", input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, errors.ErrMalformedTimestamp), "input %q", input)
	}
}

func TestRoundTrip(t *testing.T) {
	// Parse(Format(s)) == floor(s) for all s >= 0.
	for _, s := range []float64{0, 1, 59, 60, 61, 299.7, 3599, 3600, 3601, 7325.2, 86399} {
		got, err := Parse(Format(s))
		require.NoError(t, err)
		assert.Equal(t, int(math.Floor(s)), got, "seconds %v", s)
	}
}
