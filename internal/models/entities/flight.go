package entities

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TakeoffCode tells how a glider got airborne. The zero value is unknown.
type TakeoffCode string

const (
	TakeoffUnknown TakeoffCode = ""
	TakeoffWinch   TakeoffCode = "winch"
	TakeoffTow     TakeoffCode = "tow"
)

// ParseTakeoffCode maps free text to a TakeoffCode. Anything unrecognised is TakeoffUnknown.
func ParseTakeoffCode(value string) TakeoffCode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "winch", "w":
		return TakeoffWinch
	case "tow", "aerotow":
		return TakeoffTow
	default:
		return TakeoffUnknown
	}
}

func (c *TakeoffCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = TakeoffUnknown
		return nil
	}
	*c = ParseTakeoffCode(s)
	return nil
}

// Flight is one glider flight of the day.
type Flight struct {
	NetworkID           int         `json:"network_id"`
	TakeoffCode         TakeoffCode `json:"takeoff_code"`
	TakeoffMachine      string      `json:"takeoff_machine"`
	TakeoffMachinePilot string      `json:"takeoff_machine_pilot"`
	Glider              string      `json:"glider"`
	FlightCode          string      `json:"flight_code"`
	Pilot1              string      `json:"pilot1"`
	Pilot2              string      `json:"pilot2"`
	Takeoff             Clock       `json:"takeoff"`
	Landing             Clock       `json:"landing"`
}

// NewFlight returns a flight with every optional field at its default.
func NewFlight(networkID int, glider string) Flight {
	return Flight{
		NetworkID:   networkID,
		TakeoffCode: TakeoffUnknown,
		Glider:      glider,
		Takeoff:     UnknownClock,
		Landing:     UnknownClock,
	}
}

// Duration returns the airborne time in minutes, or 0 when a time is missing.
func (f Flight) Duration() int {
	if !f.Takeoff.IsKnown() || !f.Landing.IsKnown() || f.Landing < f.Takeoff {
		return 0
	}
	return int(f.Landing.Sub(f.Takeoff).Minutes())
}

// UnmarshalJSON decodes leniently: missing fields, nulls and values of the
// wrong type fall back to defaults instead of failing the whole flight.
func (f *Flight) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = NewFlight(lenientInt(raw["network_id"]), lenientString(raw["glider"]))
	_ = f.TakeoffCode.UnmarshalJSON(orNull(raw["takeoff_code"]))
	f.TakeoffMachine = lenientString(raw["takeoff_machine"])
	f.TakeoffMachinePilot = lenientString(raw["takeoff_machine_pilot"])
	f.FlightCode = lenientString(raw["flight_code"])
	f.Pilot1 = lenientString(raw["pilot1"])
	f.Pilot2 = lenientString(raw["pilot2"])
	_ = f.Takeoff.UnmarshalJSON(orNull(raw["takeoff"]))
	_ = f.Landing.UnmarshalJSON(orNull(raw["landing"]))
	return nil
}

func orNull(v json.RawMessage) []byte {
	if len(v) == 0 {
		return []byte("null")
	}
	return v
}

func lenientString(v json.RawMessage) string {
	var s string
	if len(v) == 0 || json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

func lenientInt(v json.RawMessage) int {
	if len(v) == 0 {
		return 0
	}
	var n int
	if json.Unmarshal(v, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return parsed
		}
	}
	return 0
}
