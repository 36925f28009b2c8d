package middleware

import (
	"net/http"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
)

// UsageLimitMiddleware refuses a request with 429 when its client already has
// the maximum number of requests in progress.
func UsageLimitMiddleware(usage *common.UsageControl, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientAddress(r)
			if !usage.IncreaseUsage(client) {
				metricsReg.IncAdmissionRejection()
				logging.Warn("Request refused, client over its request ceiling",
					"client", client,
					"max", usage.Max(),
					"path", r.URL.Path,
				)
				http.Error(w, constants.MsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			defer usage.DecreaseUsage(client)

			next.ServeHTTP(w, r)
		})
	}
}
