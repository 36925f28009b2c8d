package api

import (
	"net/http"
	"time"

	"github.com/planche-electronique/cepo/internal/constants"
)

// GetInfosHandler handles GET /infos?airfield=OACI
func (h *Handlers) GetInfosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		airfield, ok := h.airfield(r.URL.Query().Get("airfield"))
		if !ok {
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgUnknownAirfield)
			return
		}
		infos, ok := h.deps.Config.Infos(airfield)
		if !ok {
			respondWithError(w, initTime, http.StatusNotFound, constants.MsgUnknownAirfield)
			return
		}
		respondWithSuccess(w, initTime, http.StatusOK, constants.MsgInfosFetched, &infos)
	}
}
