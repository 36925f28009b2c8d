package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Clock is a time of day with second precision. The zero value (00:00:00)
// means the time is not known yet.
type Clock int

// UnknownClock is the sentinel for a takeoff or landing that has not been observed.
const UnknownClock Clock = 0

var clockLayouts = []string{"15:04:05", "15:04", "15h04"}

// NewClock builds a Clock, wrapping out of range values into a single day.
func NewClock(hour, minute, second int) Clock {
	s := (hour*3600 + minute*60 + second) % 86400
	if s < 0 {
		s += 86400
	}
	return Clock(s)
}

// ParseClock accepts "15:04:05", "15:04" and the feed's "15h04".
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return UnknownClock, fmt.Errorf("invalid time of day %q", value)
}

func (c Clock) Hour() int   { return int(c) / 3600 }
func (c Clock) Minute() int { return int(c) % 3600 / 60 }
func (c Clock) Second() int { return int(c) % 60 }

// IsKnown reports whether c differs from the sentinel.
func (c Clock) IsKnown() bool { return c != UnknownClock }

// String renders HH:MM, or HH:MM:SS when seconds are set.
func (c Clock) String() string {
	if c.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Sub returns c - other as a duration, which is negative when other is later.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(int(c)-int(other)) * time.Second
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON never fails on a malformed value: null, empty or unparseable
// strings decode to the sentinel.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = UnknownClock
		return nil
	}
	parsed, err := ParseClock(s)
	if err != nil {
		*c = UnknownClock
		return nil
	}
	*c = parsed
	return nil
}
