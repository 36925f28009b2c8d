package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/models/dtos/responses"
)

func respondWithSuccess[T any](w http.ResponseWriter, initTime time.Time, statusCode int, message string, data *T) {
	resp := responses.APIResponse[T]{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: common.GetResponseTime(initTime),
		Timestamp:    time.Now().UTC(),
		Data:         data,
	}
	writeJSON(w, statusCode, resp)
}

func respondWithError(w http.ResponseWriter, initTime time.Time, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:       string(constants.APIStatusError),
		ResponseTime: common.GetResponseTime(initTime),
		Timestamp:    time.Now().UTC(),
		Error:        message,
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
