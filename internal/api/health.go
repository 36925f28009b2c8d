package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		storeStatus := "ok"
		storeDetails := "Data root available"
		if _, err := os.Stat(h.deps.Store.Root()); err != nil {
			storeStatus = "down"
			storeDetails = err.Error()
		}
		services["data_root"] = entities.ServiceStatus{
			Status:  storeStatus,
			Details: storeDetails,
		}

		if h.deps.Archive == nil {
			services["archive"] = entities.ServiceStatus{Status: "disabled", Details: "Flight archive disabled"}
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			archiveStatus := "ok"
			archiveDetails := "Archive connected"
			if err := h.deps.Archive.Ping(ctx); err != nil {
				archiveStatus = "down"
				archiveDetails = err.Error()
			}
			services["archive"] = entities.ServiceStatus{
				Status:  archiveStatus,
				Details: archiveDetails,
			}
		}

		airfields := make(map[string]entities.LiveLogStatus)
		for _, code := range h.deps.Service.Airfields() {
			view, err := h.deps.Service.Get(r.Context(), code, entities.Day{})
			if err != nil {
				continue
			}
			airfields[code] = entities.LiveLogStatus{Date: view.Log.Date, Flights: len(view.Log.Flights)}
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status == "down" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services:  services,
			Airfields: airfields,
			Status:    overallStatus,
			UpSince:   h.deps.UpSince,
			Uptime:    time.Since(h.deps.UpSince).Round(time.Second).String(),
		}
		statusCode := http.StatusOK
		if overallStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, resp)
	}
}
