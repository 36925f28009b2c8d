package responses

import (
	"github.com/planche-electronique/cepo/internal/db/repositories"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// FlightLogResponse is the payload of GET /flightlog.
type FlightLogResponse struct {
	entities.FlightLog
	// SkippedFiles counts stored flight files that could not be read.
	SkippedFiles int `json:"skipped_files"`
}

type UpdatesResponse struct {
	Updates []entities.Update `json:"updates"`
}

type GliderStatsResponse struct {
	From     string                    `json:"from"`
	To       string                    `json:"to"`
	Airfield string                    `json:"airfield,omitempty"`
	Gliders  []repositories.GliderStat `json:"gliders"`
}
