package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format of a day, as used in query strings and payloads.
const DayLayout = "2006/01/02"

// Day is a calendar date without time or location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay accepts "2006/01/02" and "2006-01-02".
func ParseDay(value string) (Day, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{DayLayout, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return DayOf(t), nil
		}
	}
	return Day{}, fmt.Errorf("invalid day %q", value)
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) IsZero() bool { return d == Day{} }

func (d Day) Before(other Day) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

func (d Day) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

// ISO renders the day as YYYY-MM-DD.
func (d Day) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("day must be a string: %w", err)
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
