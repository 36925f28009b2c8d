package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/models/dtos/requests"
	"github.com/planche-electronique/cepo/internal/models/dtos/responses"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

const maxUpdateBody = 64 << 10

// PostUpdateHandler handles POST /updates. A malformed edit is answered with
// applied=false and a reason, never with an HTTP error.
func (h *Handlers) PostUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBody))
		if err != nil {
			respondWithError(w, initTime, http.StatusBadRequest, "could not read body")
			return
		}

		var req requests.UpdateRequest
		if err := json.Unmarshal(common.StripNUL(body), &req); err != nil {
			logging.Warn("Malformed update body", "client", r.RemoteAddr, "error", err.Error())
			outcome := entities.EditOutcome{Reason: "malformed update: " + err.Error()}
			respondWithSuccess(w, initTime, http.StatusOK, constants.MsgUpdateIgnored, &outcome)
			return
		}

		update, err := req.ToUpdate()
		if err != nil {
			outcome := entities.EditOutcome{Reason: err.Error()}
			respondWithSuccess(w, initTime, http.StatusOK, constants.MsgUpdateIgnored, &outcome)
			return
		}

		outcome := h.deps.Service.ApplyEdit(r.Context(), update)
		message := constants.MsgUpdateApplied
		if !outcome.Applied {
			message = constants.MsgUpdateIgnored
		}
		respondWithSuccess(w, initTime, http.StatusOK, message, &outcome)
	}
}

// GetUpdatesHandler handles GET /updates: the edits applied in the retention window.
func (h *Handlers) GetUpdatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		resp := responses.UpdatesResponse{Updates: h.deps.Service.Journal().Snapshot()}
		respondWithSuccess(w, initTime, http.StatusOK, constants.MsgUpdatesFetched, &resp)
	}
}
