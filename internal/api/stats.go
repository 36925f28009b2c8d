package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/db/repositories"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/models/dtos/responses"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// GetGliderStatsHandler handles GET /stats/gliders?from=&to=&airfield=.
// to defaults to today and from to the first day of to's year. Without
// airfield every airfield is counted.
func (h *Handlers) GetGliderStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if h.deps.Archive == nil {
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgArchiveDisabled)
			return
		}
		query := r.URL.Query()

		airfield := strings.ToUpper(strings.TrimSpace(query.Get("airfield")))
		if airfield != "" {
			if _, ok := h.deps.Config.Airfield(airfield); !ok {
				respondWithError(w, initTime, http.StatusNotFound, constants.MsgUnknownAirfield)
				return
			}
		}

		to := h.deps.Service.Today()
		if raw := query.Get("to"); raw != "" {
			parsed, err := entities.ParseDay(raw)
			if err != nil {
				respondWithError(w, initTime, http.StatusBadRequest, constants.MsgInvalidDateRange)
				return
			}
			to = parsed
		}
		from := entities.Day{Year: to.Year, Month: time.January, Day: 1}
		if raw := query.Get("from"); raw != "" {
			parsed, err := entities.ParseDay(raw)
			if err != nil {
				respondWithError(w, initTime, http.StatusBadRequest, constants.MsgInvalidDateRange)
				return
			}
			from = parsed
		}
		if to.Before(from) {
			respondWithError(w, initTime, http.StatusBadRequest, constants.MsgInvalidDateRange)
			return
		}

		stats, err := h.deps.Archive.GliderStats(r.Context(), from, to, airfield)
		if err != nil {
			logging.Error("Glider stats query failed", "error", err.Error())
			respondWithError(w, initTime, http.StatusInternalServerError, err.Error())
			return
		}
		if stats == nil {
			stats = []repositories.GliderStat{}
		}

		respondWithSuccess(w, initTime, http.StatusOK, constants.MsgGliderStatsLoaded, &responses.GliderStatsResponse{
			From:     from.String(),
			To:       to.String(),
			Airfield: airfield,
			Gliders:  stats,
		})
	}
}
