// Package timestamp converts between seconds and MM:SS / HH:MM:SS strings.
package timestamp

import (
	"math"
	"strconv"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// Format renders seconds as "MM:SS", or "HH:MM:SS" once the value reaches an
// hour. Fractional seconds are floored. Negative or non-finite input renders
// as "00:00".
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00"
	}

	total := int(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	var b strings.Builder
	if hours > 0 {
		writePadded(&b, hours)
		b.WriteByte(':')
	}
	writePadded(&b, minutes)
	b.WriteByte(':')
	writePadded(&b, secs)
	return b.String()
}

// Parse decodes a timestamp string into whole seconds.
// One part is seconds, two is MM:SS, three is HH:MM:SS.
//
// A malformed timestamp returns 0 with a MalformedTimestamp error; callers
// that cannot recover a better value use the 0 and keep going.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.MalformedTimestamp("empty timestamp")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errors.MalformedTimestampf("too many fields in %q", s)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, errors.MalformedTimestampf("invalid field %q in %q", part, s)
		}
		values[i] = n
	}

	switch len(values) {
	case 1:
		return values[0], nil
	case 2:
		return values[0]*60 + values[1], nil
	default:
		return values[0]*3600 + values[1]*60 + values[2], nil
	}
}

func writePadded(b *strings.Builder, n int) {
	if n < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(n))
}
