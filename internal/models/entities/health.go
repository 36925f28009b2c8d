package entities

import "time"

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// LiveLogStatus summarizes the in-memory log of one airfield.
type LiveLogStatus struct {
	Date    Day `json:"date"`
	Flights int `json:"flights"`
}

type HealthCheckResponse struct {
	Status    string                   `json:"status"`
	Services  map[string]ServiceStatus `json:"services"`
	Airfields map[string]LiveLogStatus `json:"airfields"`
	UpSince   time.Time                `json:"up_since"`
	Uptime    string                   `json:"uptime"`
}
