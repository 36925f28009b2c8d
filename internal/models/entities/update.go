package entities

import (
	"fmt"
	"strings"
	"time"
)

// CrewFlightID addresses the crew assignment instead of a flight in an Update.
const CrewFlightID = 0

// Update is one field edit. Applied updates are kept in a short-lived journal
// so thin clients can poll for changes instead of reloading whole logs.
type Update struct {
	ID        string    `json:"id"`
	FlightID  int       `json:"flight_id"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Date      Day       `json:"date"`
	Airfield  string    `json:"airfield,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EditField is the closed set of fields an Update can target.
type EditField int

const (
	FieldUnknown EditField = iota
	FieldTakeoffCode
	FieldTakeoffMachine
	FieldTakeoffMachinePilot
	FieldGlider
	FieldFlightCode
	FieldPilot1
	FieldPilot2
	FieldTakeoff
	FieldLanding
	FieldWinchPilot
	FieldWinch
	FieldTowPilot
	FieldTowPlane
	FieldFieldChief
)

var editFieldNames = map[string]EditField{
	"takeoff_code":          FieldTakeoffCode,
	"takeoff_machine":       FieldTakeoffMachine,
	"takeoff_machine_pilot": FieldTakeoffMachinePilot,
	"glider":                FieldGlider,
	"flight_code":           FieldFlightCode,
	"pilot1":                FieldPilot1,
	"pilot2":                FieldPilot2,
	"takeoff":               FieldTakeoff,
	"landing":               FieldLanding,
	"winch_pilot":           FieldWinchPilot,
	"winch":                 FieldWinch,
	"tow_pilot":             FieldTowPilot,
	"tow_plane":             FieldTowPlane,
	"field_chief":           FieldFieldChief,
}

// ParseEditField never fails; unknown names give FieldUnknown.
func ParseEditField(name string) EditField {
	if f, ok := editFieldNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return FieldUnknown
}

// IsCrew reports whether the field is a crew slot, addressed with CrewFlightID.
func (f EditField) IsCrew() bool {
	return f >= FieldWinchPilot && f <= FieldFieldChief
}

func (f EditField) String() string {
	for name, v := range editFieldNames {
		if v == f {
			return name
		}
	}
	return "unknown"
}

// EditOutcome reports what ApplyEdit did. Reason is set when nothing changed.
type EditOutcome struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

func rejected(format string, args ...any) EditOutcome {
	return EditOutcome{Reason: fmt.Sprintf(format, args...)}
}

// ApplyEdit mutates one flight field or one crew slot of l. Malformed edits
// (unknown field, bad value, missing flight) leave l untouched.
func (l *FlightLog) ApplyEdit(u Update) EditOutcome {
	field := ParseEditField(u.Field)

	switch {
	case field == FieldUnknown:
		return rejected("unknown field %q", u.Field)
	case u.FlightID == CrewFlightID && !field.IsCrew():
		return rejected("field %q is not a crew slot", u.Field)
	case u.FlightID != CrewFlightID && field.IsCrew():
		return rejected("crew slot %q must use flight id %d", u.Field, CrewFlightID)
	case field.IsCrew():
		l.applyCrew(field, u.Value)
		return EditOutcome{Applied: true}
	}

	idx := l.FlightIndex(u.FlightID)
	if idx < 0 {
		return rejected("no flight with id %d", u.FlightID)
	}
	f := &l.Flights[idx]

	switch field {
	case FieldTakeoffCode:
		f.TakeoffCode = ParseTakeoffCode(u.Value)
	case FieldTakeoffMachine:
		f.TakeoffMachine = u.Value
	case FieldTakeoffMachinePilot:
		f.TakeoffMachinePilot = u.Value
	case FieldGlider:
		f.Glider = u.Value
	case FieldFlightCode:
		f.FlightCode = u.Value
	case FieldPilot1:
		f.Pilot1 = u.Value
	case FieldPilot2:
		f.Pilot2 = u.Value
	case FieldTakeoff, FieldLanding:
		c, err := ParseClock(u.Value)
		if err != nil {
			return rejected("%v", err)
		}
		if field == FieldTakeoff {
			f.Takeoff = c
		} else {
			f.Landing = c
		}
	}
	return EditOutcome{Applied: true}
}

func (l *FlightLog) applyCrew(field EditField, value string) {
	switch field {
	case FieldWinchPilot:
		l.Crew.WinchPilot = value
	case FieldWinch:
		l.Crew.Winch = value
	case FieldTowPilot:
		l.Crew.TowPilot = value
	case FieldTowPlane:
		l.Crew.TowPlane = value
	case FieldFieldChief:
		l.Crew.FieldChief = value
	}
}
