package jobs

import (
	"github.com/planche-electronique/cepo/internal/config"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/services"
)

// InitializeJobs builds one sync job per configured airfield.
func InitializeJobs(cfg *config.Configuration, service *services.FlightLogService, m *metrics.MetricsRegistry) []*OGNSyncJob {
	jobs := make([]*OGNSyncJob, 0, len(cfg.Airfields))
	for _, a := range cfg.Airfields {
		jobs = append(jobs, NewOGNSyncJob(a, service, m))
	}
	return jobs
}
