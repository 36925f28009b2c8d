package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/models/dtos"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// OGNProviderConfig configures the OGN flightbook client.
type OGNProviderConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	// Registrations lists, per airfield, the gliders and tow planes to keep.
	Registrations map[string][]string
	Cache         *common.LogbookCache
	Metrics       *metrics.MetricsRegistry
}

// OGNProvider reads daily logbooks from the OGN flightbook API.
type OGNProvider struct {
	BaseURL string
	Client  *http.Client

	limiter       *rate.Limiter
	registrations map[string]map[string]struct{}
	cache         *common.LogbookCache
	metrics       *metrics.MetricsRegistry
}

func NewOGNProvider(cfg OGNProviderConfig) *OGNProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultFeedBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	regs := make(map[string]map[string]struct{}, len(cfg.Registrations))
	for airfield, list := range cfg.Registrations {
		set := make(map[string]struct{}, len(list))
		for _, r := range list {
			set[strings.ToUpper(strings.TrimSpace(r))] = struct{}{}
		}
		regs[airfield] = set
	}

	return &OGNProvider{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		Client:        &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(limit, 1),
		registrations: regs,
		cache:         cfg.Cache,
		metrics:       cfg.Metrics,
	}
}

// FetchFlights implements FlightFeed.
func (p *OGNProvider) FetchFlights(ctx context.Context, day entities.Day, airfield string) ([]entities.Flight, error) {
	if cached, ok := p.cache.Get(airfield, day); ok {
		p.metrics.IncFeedCacheHit()
		logging.Debug("OGN logbook served from cache", "airfield", airfield, "date", day.String(), "count", len(cached))
		return cached, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: "Waiting for feed rate limiter",
			Err:     err,
		}
	}

	start := time.Now()
	endpoint := fmt.Sprintf("/logbook/%s/%s", airfield, day.ISO())
	var logbook dtos.OGNLogbookResponse
	if _, err := p.doGET(ctx, endpoint, &logbook); err != nil {
		p.metrics.ObserveFeedFetch(airfield, "error", time.Since(start))
		return nil, err
	}
	p.metrics.ObserveFeedFetch(airfield, "ok", time.Since(start))

	flights := p.toFlights(airfield, &logbook)
	logging.Info("OGN logbook fetched",
		"airfield", airfield,
		"date", day.String(),
		"count", len(flights),
		"raw_count", len(logbook.Flights),
	)
	p.cache.Set(airfield, day, flights)
	return flights, nil
}

// toFlights keeps the flights of known registrations. Ids are the 1-based
// position in the feed's flights array.
func (p *OGNProvider) toFlights(airfield string, logbook *dtos.OGNLogbookResponse) []entities.Flight {
	keep := p.registrations[airfield]
	flights := make([]entities.Flight, 0, len(logbook.Flights))

	for i, raw := range logbook.Flights {
		registration, ok := deviceRegistration(logbook, raw.Device)
		if !ok {
			logging.Warn("OGN flight references an unknown device", "airfield", airfield, "index", i, "device", raw.Device)
			continue
		}
		if _, wanted := keep[strings.ToUpper(registration)]; !wanted {
			continue
		}

		f := entities.NewFlight(i+1, registration)
		f.Takeoff = parseFeedTime(raw.Start)
		f.Landing = parseFeedTime(raw.Stop)
		f.TakeoffCode = entities.TakeoffWinch
		if raw.Tow != nil && *raw.Tow >= 0 && *raw.Tow < len(logbook.Flights) {
			f.TakeoffCode = entities.TakeoffTow
			if machine, ok := deviceRegistration(logbook, logbook.Flights[*raw.Tow].Device); ok {
				f.TakeoffMachine = machine
			}
		}
		flights = append(flights, f)
	}
	return flights
}

func deviceRegistration(logbook *dtos.OGNLogbookResponse, device int) (string, bool) {
	if device < 0 || device >= len(logbook.Devices) {
		return "", false
	}
	return logbook.Devices[device].Registration, true
}

func parseFeedTime(v *string) entities.Clock {
	if v == nil {
		return entities.UnknownClock
	}
	c, err := entities.ParseClock(*v)
	if err != nil {
		return entities.UnknownClock
	}
	return c
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

func (p *OGNProvider) doGET(ctx context.Context, endpoint string, result interface{}) (int, error) {
	url := p.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.handleHTTPError(resp, endpoint); err != nil {
		return resp.StatusCode, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    constants.GetErrorMessage(constants.ErrCodeInvalidDataFormat),
			Details:    string(body),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return resp.StatusCode, nil
}

// handleHTTPError converts HTTP errors to ProviderError
func (p *OGNProvider) handleHTTPError(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return buildHTTPError(resp.StatusCode, endpoint, string(body))
}

func buildHTTPError(statusCode int, endpoint string, body string) error {
	code := constants.ErrCodeUpstreamError
	message := fmt.Sprintf("HTTP %d from %s", statusCode, endpoint)
	switch statusCode {
	case http.StatusNotFound:
		code = constants.ErrCodeAirfieldNotFound
		message = fmt.Sprintf("Logbook not found: %s", endpoint)
	case http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
		message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	}
	return &ProviderError{
		Code:       code,
		Message:    message,
		Details:    body,
		StatusCode: statusCode,
		Err:        fmt.Errorf("%w: %d", ErrFeedStatus, statusCode),
	}
}
