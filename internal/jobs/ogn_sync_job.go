package jobs

import (
	"context"
	"time"

	"github.com/planche-electronique/cepo/internal/config"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/services"
)

// OGNSyncJob polls the OGN feed for one airfield and reconciles today's log.
type OGNSyncJob struct {
	airfield config.AirfieldConfig
	service  *services.FlightLogService
	metrics  *metrics.MetricsRegistry
}

func (j *OGNSyncJob) Airfield() string { return j.airfield.OACI }

func NewOGNSyncJob(airfield config.AirfieldConfig, service *services.FlightLogService, m *metrics.MetricsRegistry) *OGNSyncJob {
	return &OGNSyncJob{airfield: airfield, service: service, metrics: m}
}

// Run refreshes today's flight log once. Days outside the airfield's
// monitored days are skipped.
func (j *OGNSyncJob) Run(ctx context.Context) error {
	oaci := j.airfield.OACI
	today := j.service.Today()
	if !j.airfield.IsMonitored(today) {
		logging.Debug("OGN sync skipped, day not monitored", "airfield", oaci, "date", today.String())
		return nil
	}

	start := time.Now()
	res, err := j.service.RefreshToday(ctx, oaci)
	j.metrics.ObserveSyncJob(oaci, time.Since(start))
	if err != nil {
		return err
	}

	if res.FeedErr != nil {
		logging.Warn("OGN sync finished without feed data",
			"airfield", oaci,
			"date", today.String(),
			"error", res.FeedErr.Error(),
		)
		return nil
	}
	logging.Info("OGN sync finished",
		"airfield", oaci,
		"date", today.String(),
		"matched", res.Merge.Matched,
		"enriched", res.Merge.Enriched,
		"corrected", res.Merge.Corrected,
		"appended", res.Merge.Appended,
		"written", res.Save.Written,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// RunScheduled runs the job immediately, then on every tick until ctx is done.
func (j *OGNSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Error("OGN sync failed", "airfield", j.airfield.OACI, "error", err.Error())
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("OGN sync failed", "airfield", j.airfield.OACI, "error", err.Error())
			}
		case <-ctx.Done():
			logging.Info("OGN sync stopped", "airfield", j.airfield.OACI)
			return
		}
	}
}
