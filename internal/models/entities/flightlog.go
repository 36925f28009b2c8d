package entities

import "slices"

// CrewAssignment holds the day's ground roles. Values come from the club's
// configured lists but are stored as free text.
type CrewAssignment struct {
	WinchPilot string `json:"winch_pilot"`
	Winch      string `json:"winch"`
	TowPilot   string `json:"tow_pilot"`
	TowPlane   string `json:"tow_plane"`
	FieldChief string `json:"field_chief"`
}

// FlightLog is one airfield's flights and crew for one day.
type FlightLog struct {
	Date     Day            `json:"date"`
	Airfield string         `json:"airfield"`
	Flights  []Flight       `json:"flights"`
	Crew     CrewAssignment `json:"crew"`
}

// NewFlightLog returns an empty log for the given day and airfield.
func NewFlightLog(day Day, airfield string) FlightLog {
	return FlightLog{Date: day, Airfield: airfield, Flights: []Flight{}}
}

// Clone returns a deep copy safe to use outside the owner's lock.
func (l FlightLog) Clone() FlightLog {
	c := l
	c.Flights = slices.Clone(l.Flights)
	if c.Flights == nil {
		c.Flights = []Flight{}
	}
	return c
}

// FlightIndex returns the position of the flight with the given network id, or -1.
func (l FlightLog) FlightIndex(networkID int) int {
	return slices.IndexFunc(l.Flights, func(f Flight) bool { return f.NetworkID == networkID })
}
