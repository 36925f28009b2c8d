package api

import (
	"strings"
	"time"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/config"
	"github.com/planche-electronique/cepo/internal/db"
	"github.com/planche-electronique/cepo/internal/db/repositories"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/services"
)

// Dependencies is everything the HTTP layer needs. Archive is nil when the
// flight archive is disabled.
type Dependencies struct {
	Config  *config.Configuration
	Service *services.FlightLogService
	Store   *db.DayStore
	Archive *repositories.FlightArchiveRepo
	Usage   *common.UsageControl
	Metrics *metrics.MetricsRegistry
	UpSince time.Time
}

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// airfield resolves the airfield query value, defaulting to the first
// configured airfield.
func (h *Handlers) airfield(value string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if code == "" {
		return h.deps.Config.DefaultAirfield(), true
	}
	_, ok := h.deps.Config.Airfield(code)
	return code, ok
}
