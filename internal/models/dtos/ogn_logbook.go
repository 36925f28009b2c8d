package dtos

// OGNLogbookResponse is the payload of GET /logbook/{OACI}/{YYYY-MM-DD} on the
// OGN flightbook API.
type OGNLogbookResponse struct {
	Devices []OGNDevice `json:"devices"`
	Flights []OGNFlight `json:"flights"`
}

type OGNDevice struct {
	Address      string `json:"address,omitempty"`
	Aircraft     string `json:"aircraft"`
	AircraftType int    `json:"aircraft_type"`
	Registration string `json:"registration"`
	Competition  string `json:"competition,omitempty"`
}

// OGNFlight references its aircraft by position in Devices. Tow, when set,
// is the position of the towing flight in the same Flights array.
type OGNFlight struct {
	Device   int     `json:"device"`
	Start    *string `json:"start"`
	Stop     *string `json:"stop"`
	Tow      *int    `json:"tow"`
	Duration *int    `json:"duration,omitempty"`
}
