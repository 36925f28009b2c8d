package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/models/dtos/responses"
	"github.com/planche-electronique/cepo/internal/models/entities"
	"github.com/planche-electronique/cepo/internal/services"
)

// GetFlightLogHandler handles GET /flightlog?date=YYYY/MM/DD&airfield=OACI.
// A date that does not parse falls back to today.
func (h *Handlers) GetFlightLogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		query := r.URL.Query()

		airfield, ok := h.airfield(query.Get("airfield"))
		if !ok {
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgUnknownAirfield)
			return
		}

		var day entities.Day
		if raw := query.Get("date"); raw != "" {
			parsed, err := entities.ParseDay(raw)
			if err != nil {
				logging.Error("Could not parse request date, serving today", "date", raw, "error", err.Error())
			} else {
				day = parsed
			}
		}

		view, err := h.deps.Service.Get(r.Context(), airfield, day)
		if errors.Is(err, services.ErrUnknownAirfield) {
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgUnknownAirfield)
			return
		}
		if err != nil {
			logging.Error("Could not load flight log", "airfield", airfield, "date", day.String(), "error", err.Error())
			respondWithError(w, initTime, http.StatusInternalServerError, err.Error())
			return
		}

		respondWithSuccess(w, initTime, http.StatusOK, constants.MsgFlightLogFetched, &responses.FlightLogResponse{
			FlightLog:    view.Log,
			SkippedFiles: view.Skipped,
		})
	}
}
