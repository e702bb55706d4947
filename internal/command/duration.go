package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseSpan parses the compact duration grammar used by mute, ban and
// remind arguments: one or more <integer><unit> groups where the unit is
// s, m, h or d. Groups accumulate, so "1h30m" is 90 minutes. Any other
// shape is rejected with a reason naming the offending part.
func ParseSpan(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	var total time.Duration
	rest := s
	for rest != "" {
		i := 0
		for i < len(rest) && unicode.IsDigit(rune(rest[i])) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("expected a number at %q", rest)
		}
		if i == len(rest) {
			return 0, fmt.Errorf("missing unit after %q (use s, m, h or d)", rest)
		}
		n, err := strconv.ParseInt(rest[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", rest[:i])
		}
		var unit time.Duration
		switch rest[i] {
		case 's':
			unit = time.Second
		case 'm':
			unit = time.Minute
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		default:
			return 0, fmt.Errorf("unknown unit %q (use s, m, h or d)", string(rest[i]))
		}
		total += time.Duration(n) * unit
		rest = rest[i+1:]
	}
	if total <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return total, nil
}

// HumanSpan renders an elapsed duration as a days/hours/minutes/seconds
// breakdown, omitting leading zero units: 3661s is "1 hour, 1 minute and
// 1 second", never "0 days, 1 hour, ...".
func HumanSpan(d time.Duration) string {
	if d < time.Second {
		return "a moment"
	}
	secs := int64(d / time.Second)
	parts := make([]string, 0, 4)
	push := func(n int64, unit string) {
		if n == 0 && len(parts) == 0 {
			return
		}
		label := unit
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	push(secs/86400, "day")
	push(secs%86400/3600, "hour")
	push(secs%3600/60, "minute")
	push(secs%60, "second")
	// trim trailing zero units too
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "0 ") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
