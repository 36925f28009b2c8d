package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planche-electronique/cepo/internal/config"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/db"
	"github.com/planche-electronique/cepo/internal/db/repositories"
	"github.com/planche-electronique/cepo/internal/models/dtos/responses"
	"github.com/planche-electronique/cepo/internal/models/entities"
	"github.com/planche-electronique/cepo/internal/services"
)

type stubFeed struct {
	mu      sync.Mutex
	flights map[entities.Day][]entities.Flight
	days    []entities.Day
}

func (f *stubFeed) FetchFlights(_ context.Context, day entities.Day, _ string) ([]entities.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, day)
	return append([]entities.Flight(nil), f.flights[day]...), nil
}

var testToday = entities.Day{Year: 2023, Month: time.April, Day: 25}

func flightAt(id int, glider string, takeoff, landing entities.Clock) entities.Flight {
	f := entities.NewFlight(id, glider)
	f.TakeoffCode = entities.TakeoffWinch
	f.Takeoff = takeoff
	f.Landing = landing
	return f
}

func setupHandlers(t *testing.T, withArchive bool) (*Handlers, *stubFeed) {
	t.Helper()
	store, err := db.NewDayStore(t.TempDir(), nil)
	require.NoError(t, err)

	cfg := &config.Configuration{
		PermanentPilots: []string{"Bob"},
		Airfields: []config.AirfieldConfig{
			{OACI: "LFLE", Pilots: []string{"Alice", "Bob"}, Winches: []string{"Treuil 1"}},
			{OACI: "LFLB"},
		},
	}

	var archive *repositories.FlightArchiveRepo
	var archiver services.Archiver
	if withArchive {
		gdb, err := db.OpenArchive("sqlite", ":memory:")
		require.NoError(t, err)
		sqlDB, err := gdb.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		archive = repositories.NewFlightArchiveRepo(gdb)
		require.NoError(t, archive.Migrate(context.Background()))
		archiver = archive
	}

	feed := &stubFeed{flights: map[entities.Day][]entities.Flight{
		testToday: {flightAt(1, "F-CERJ", entities.NewClock(10, 0, 0), entities.NewClock(10, 40, 0))},
	}}
	svc, err := services.NewFlightLogService(services.FlightLogServiceConfig{
		Airfields: cfg.AirfieldCodes(),
		Store:     store,
		Feed:      feed,
		Archive:   archiver,
		Now:       func() time.Time { return time.Date(2023, time.April, 25, 12, 0, 0, 0, time.Local) },
	})
	require.NoError(t, err)
	_, err = svc.RefreshToday(context.Background(), "LFLE")
	require.NoError(t, err)

	return NewHandlers(&Dependencies{
		Config:  cfg,
		Service: svc,
		Store:   store,
		Archive: archive,
		UpSince: time.Now(),
	}), feed
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) responses.APIResponse[T] {
	t.Helper()
	var resp responses.APIResponse[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func serve(h http.HandlerFunc, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestGetFlightLogHandler_Today(t *testing.T) {
	h, feed := setupHandlers(t, false)
	calls := len(feed.days)

	rr := serve(h.GetFlightLogHandler(), http.MethodGet, "/flightlog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode[responses.FlightLogResponse](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, constants.MsgFlightLogFetched, resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, testToday, resp.Data.Date)
	assert.Equal(t, "LFLE", resp.Data.Airfield)
	require.Len(t, resp.Data.Flights, 1)
	assert.Equal(t, "F-CERJ", resp.Data.Flights[0].Glider)
	assert.Equal(t, calls, len(feed.days), "today is served from memory")
}

func TestGetFlightLogHandler_BadDateFallsBackToToday(t *testing.T) {
	h, _ := setupHandlers(t, false)

	rr := serve(h.GetFlightLogHandler(), http.MethodGet, "/flightlog?date=yesterday", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[responses.FlightLogResponse](t, rr)
	assert.Equal(t, testToday, resp.Data.Date)
}

func TestGetFlightLogHandler_OtherDayRefreshes(t *testing.T) {
	h, feed := setupHandlers(t, false)
	past := entities.Day{Year: 2023, Month: time.April, Day: 20}
	feed.mu.Lock()
	feed.flights[past] = []entities.Flight{flightAt(1, "F-CEJU", entities.NewClock(14, 0, 0), entities.UnknownClock)}
	feed.mu.Unlock()

	rr := serve(h.GetFlightLogHandler(), http.MethodGet, "/flightlog?date=2023/04/20&airfield=lfle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[responses.FlightLogResponse](t, rr)
	assert.Equal(t, past, resp.Data.Date)
	require.Len(t, resp.Data.Flights, 1)
	assert.Equal(t, "F-CEJU", resp.Data.Flights[0].Glider)
	assert.Equal(t, 0, resp.Data.SkippedFiles)
	assert.Contains(t, feed.days, past)
}

func TestGetFlightLogHandler_UnknownAirfield(t *testing.T) {
	h, _ := setupHandlers(t, false)

	rr := serve(h.GetFlightLogHandler(), http.MethodGet, "/flightlog?airfield=LFPG", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decode[any](t, rr)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, constants.MsgUnknownAirfield, resp.Error)
}

func TestPostUpdateHandler_AppliesAndJournals(t *testing.T) {
	h, _ := setupHandlers(t, false)

	body := append([]byte(`{"flight_id":1,"field":"pilot1","value":"Alice","date":"2023/04/25"}`), 0, 0, 0)
	rr := serve(h.PostUpdateHandler(), http.MethodPost, "/updates", body)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[entities.EditOutcome](t, rr)
	assert.Equal(t, constants.MsgUpdateApplied, resp.Message)
	assert.True(t, resp.Data.Applied)

	rr = serve(h.GetUpdatesHandler(), http.MethodGet, "/updates", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	updates := decode[responses.UpdatesResponse](t, rr)
	require.Len(t, updates.Data.Updates, 1)
	assert.Equal(t, "pilot1", updates.Data.Updates[0].Field)
	assert.Equal(t, "LFLE", updates.Data.Updates[0].Airfield)
	assert.NotEmpty(t, updates.Data.Updates[0].ID)

	rr = serve(h.GetFlightLogHandler(), http.MethodGet, "/flightlog", nil)
	log := decode[responses.FlightLogResponse](t, rr)
	assert.Equal(t, "Alice", log.Data.Flights[0].Pilot1)
}

func TestPostUpdateHandler_IgnoredEdits(t *testing.T) {
	h, _ := setupHandlers(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `flight 1 pilot1 Alice`},
		{"bad flight id", `{"flight_id":"one","field":"pilot1","value":"Alice"}`},
		{"bad date", `{"flight_id":1,"field":"pilot1","value":"Alice","date":"25 avril"}`},
		{"unknown field", `{"flight_id":1,"field":"colour","value":"red"}`},
		{"missing flight", `{"flight_id":42,"field":"pilot1","value":"Alice"}`},
		{"unknown airfield", `{"flight_id":1,"field":"pilot1","value":"Alice","airfield":"LFPG"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h.PostUpdateHandler(), http.MethodPost, "/updates", []byte(tt.body))
			require.Equal(t, http.StatusOK, rr.Code)
			resp := decode[entities.EditOutcome](t, rr)
			assert.Equal(t, constants.MsgUpdateIgnored, resp.Message)
			assert.False(t, resp.Data.Applied)
			assert.NotEmpty(t, resp.Data.Reason)
		})
	}

	rr := serve(h.GetUpdatesHandler(), http.MethodGet, "/updates", nil)
	updates := decode[responses.UpdatesResponse](t, rr)
	assert.Empty(t, updates.Data.Updates)
}

func TestGetInfosHandler(t *testing.T) {
	h, _ := setupHandlers(t, false)

	rr := serve(h.GetInfosHandler(), http.MethodGet, "/infos", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[config.Infos](t, rr)
	assert.Equal(t, "LFLE", resp.Data.Airfield)
	assert.Equal(t, []string{"Bob", "Alice"}, resp.Data.Pilots)
	assert.Equal(t, []string{"Treuil 1"}, resp.Data.Winches)

	rr = serve(h.GetInfosHandler(), http.MethodGet, "/infos?airfield=LFLB", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[config.Infos](t, rr)
	assert.Equal(t, []string{"Bob"}, resp.Data.Pilots)

	rr = serve(h.GetInfosHandler(), http.MethodGet, "/infos?airfield=LFPG", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetGliderStatsHandler_ArchiveDisabled(t *testing.T) {
	h, _ := setupHandlers(t, false)

	rr := serve(h.GetGliderStatsHandler(), http.MethodGet, "/stats/gliders", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decode[any](t, rr)
	assert.Equal(t, constants.MsgArchiveDisabled, resp.Error)
}

func TestGetGliderStatsHandler(t *testing.T) {
	h, _ := setupHandlers(t, true)

	rr := serve(h.GetGliderStatsHandler(), http.MethodGet, "/stats/gliders?from=2023/04/01&to=2023/04/30&airfield=LFLE", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[responses.GliderStatsResponse](t, rr)
	assert.Equal(t, "2023/04/01", resp.Data.From)
	assert.Equal(t, []repositories.GliderStat{{Glider: "F-CERJ", Flights: 1, Minutes: 40}}, resp.Data.Gliders)

	rr = serve(h.GetGliderStatsHandler(), http.MethodGet, "/stats/gliders", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[responses.GliderStatsResponse](t, rr)
	assert.Equal(t, "2023/01/01", resp.Data.From)
	assert.Equal(t, "2023/04/25", resp.Data.To)
	assert.Len(t, resp.Data.Gliders, 1)

	rr = serve(h.GetGliderStatsHandler(), http.MethodGet, "/stats/gliders?from=2022/01/01&to=2022/12/31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[responses.GliderStatsResponse](t, rr)
	assert.NotNil(t, resp.Data.Gliders)
	assert.Empty(t, resp.Data.Gliders)
}

func TestGetGliderStatsHandler_InvalidRange(t *testing.T) {
	h, _ := setupHandlers(t, true)

	for _, target := range []string{
		"/stats/gliders?from=april",
		"/stats/gliders?to=2023-13-01",
		"/stats/gliders?from=2023/05/01&to=2023/04/01",
	} {
		rr := serve(h.GetGliderStatsHandler(), http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}

	rr := serve(h.GetGliderStatsHandler(), http.MethodGet, "/stats/gliders?airfield=LFPG", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthCheckHandler(t *testing.T) {
	h, _ := setupHandlers(t, false)

	rr := serve(h.HealthCheckHandler(), http.MethodGet, "/healthCheck", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp entities.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Services["data_root"].Status)
	assert.Equal(t, "disabled", resp.Services["archive"].Status)
	assert.Equal(t, entities.LiveLogStatus{Date: testToday, Flights: 1}, resp.Airfields["LFLE"])
	assert.Equal(t, 0, resp.Airfields["LFLB"].Flights)

	h, _ = setupHandlers(t, true)
	rr = serve(h.HealthCheckHandler(), http.MethodGet, "/healthCheck", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Services["archive"].Status)
}
