package reservation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day at minute resolution, stored as
// minutes since midnight on a 24-hour scale.
type Clock int

// MinutesPerDay bounds every valid Clock.
const MinutesPerDay = 24 * 60

// ParseClock parses a 24-hour "HH:MM" string. A trailing ":SS" is
// accepted and ignored.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

// From12Hour converts 12-hour form input to a Clock. period is "AM" or
// "PM"; hour must be 1-12 and minute 0-59.
func From12Hour(hour, minute, period string) (Clock, error) {
	h, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil {
		return 0, fmt.Errorf("parse hour %q: %w", hour, err)
	}
	m, err := strconv.Atoi(strings.TrimSpace(minute))
	if err != nil {
		return 0, fmt.Errorf("parse minute %q: %w", minute, err)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %s:%s out of range", hour, minute)
	}

	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return 0, fmt.Errorf("unknown period %q", period)
	}
	return Clock(h*60 + m), nil
}

// ClockOf returns the time of day of t, truncated to the minute.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Hour returns the 24-hour hour.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute within the hour.
func (c Clock) Minute() int { return int(c) % 60 }

// Valid reports whether c lies within a day.
func (c Clock) Valid() bool { return c >= 0 && c < MinutesPerDay }

// String returns the 24-hour wire form "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Display returns the 12-hour form "h:MM AM".
func (c Clock) Display() string {
	suffix := "AM"
	if c.Hour() >= 12 {
		suffix = "PM"
	}
	h12 := (c.Hour()+11)%12 + 1
	return fmt.Sprintf("%d:%02d %s", h12, c.Minute(), suffix)
}

// MarshalJSON encodes c as "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes "HH:MM" or "HH:MM:SS".
func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode clock: %w", err)
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// DateLayout is the wire format of reservation dates.
const DateLayout = "2006-01-02"

// ParseDate validates a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}
