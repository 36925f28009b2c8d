package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/db"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/models/entities"
	"github.com/planche-electronique/cepo/internal/providers"
)

// ErrUnknownAirfield is returned for airfields that are not configured.
var ErrUnknownAirfield = errors.New("unknown airfield")

// Archiver receives every successfully saved flight log. It is optional.
type Archiver interface {
	ArchiveDay(ctx context.Context, log entities.FlightLog) error
}

// liveLog is the in-memory "today" log of one airfield. mu guards log,
// skipped (unreadable files found when the log was loaded) and version;
// saveMu orders writes so an older snapshot never replaces a newer one.
type liveLog struct {
	mu      sync.Mutex
	log     entities.FlightLog
	skipped int
	version uint64

	saveMu sync.Mutex
	saved  map[entities.Day]uint64
}

// RefreshResult reports one refresh of a flight log from the feed.
type RefreshResult struct {
	Merge   MergeStats
	Save    db.SaveResult
	Skipped int
	// FeedErr is set when the feed could not be read; the log was still saved.
	FeedErr error
}

// FlightLogView is a flight log as returned to callers, with the number of
// stored flight files that could not be read.
type FlightLogView struct {
	Log     entities.FlightLog
	Skipped int
}

type FlightLogServiceConfig struct {
	Airfields []string
	Store     *db.DayStore
	Feed      providers.FlightFeed
	Archive   Archiver
	Journal   *common.UpdatesJournal
	Metrics   *metrics.MetricsRegistry
	Now       func() time.Time
}

// FlightLogService owns the shared flight log state: one live log per
// airfield for the current day, and serialized load-mutate-save for other days.
type FlightLogService struct {
	store   *db.DayStore
	feed    providers.FlightFeed
	archive Archiver
	journal *common.UpdatesJournal
	metrics *metrics.MetricsRegistry
	now     func() time.Time

	airfields []string
	live      map[string]*liveLog

	dayLocksMu sync.Mutex
	dayLocks   map[string]*sync.Mutex
}

// NewFlightLogService loads today's log of every airfield from the store.
func NewFlightLogService(cfg FlightLogServiceConfig) (*FlightLogService, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("flight log service: %w", db.ErrDataRootUnavailable)
	}
	if len(cfg.Airfields) == 0 {
		return nil, fmt.Errorf("flight log service: no airfield")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	journal := cfg.Journal
	if journal == nil {
		journal = common.NewUpdatesJournal(0, now, cfg.Metrics)
	}

	s := &FlightLogService{
		store:     cfg.Store,
		feed:      cfg.Feed,
		archive:   cfg.Archive,
		journal:   journal,
		metrics:   cfg.Metrics,
		now:       now,
		airfields: append([]string(nil), cfg.Airfields...),
		live:      make(map[string]*liveLog, len(cfg.Airfields)),
		dayLocks:  make(map[string]*sync.Mutex),
	}

	today := s.Today()
	for _, airfield := range cfg.Airfields {
		res, err := s.store.Load(today, airfield)
		if err != nil {
			return nil, fmt.Errorf("load today's log for %s: %w", airfield, err)
		}
		s.live[airfield] = &liveLog{log: res.Log, skipped: res.Skipped, saved: make(map[entities.Day]uint64)}
		logging.Info("Loaded today's flight log",
			"airfield", airfield,
			"date", today.String(),
			"flights", len(res.Log.Flights),
			"skipped", res.Skipped,
		)
	}
	return s, nil
}

// Today is the current local day.
func (s *FlightLogService) Today() entities.Day {
	return entities.DayOf(s.now())
}

func (s *FlightLogService) Airfields() []string {
	return append([]string(nil), s.airfields...)
}

func (s *FlightLogService) Journal() *common.UpdatesJournal {
	return s.journal
}

func (s *FlightLogService) liveFor(airfield string) (*liveLog, error) {
	l, ok := s.live[airfield]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAirfield, airfield)
	}
	return l, nil
}

// current returns the live log of airfield, rolling it over to today first
// when the wall-clock day changed since its last use.
func (s *FlightLogService) current(ctx context.Context, airfield string) (*liveLog, entities.Day, error) {
	l, err := s.liveFor(airfield)
	if err != nil {
		return nil, entities.Day{}, err
	}
	today := s.Today()

	l.mu.Lock()
	previousDay := l.log.Date
	l.mu.Unlock()
	if previousDay == today {
		return l, today, nil
	}

	// Stored-day edits of previousDay wait for its final save.
	unlock := s.lockDay(airfield, previousDay)
	defer unlock()

	l.mu.Lock()
	if l.log.Date != previousDay {
		l.mu.Unlock()
		return l, today, nil
	}
	previous := l.log.Clone()
	version := l.version
	l.mu.Unlock()

	if _, err := s.persist(ctx, l, previous, version); err != nil {
		logging.Error("Could not save flight log before day change",
			"airfield", airfield, "date", previous.Date.String(), "error", err.Error())
	}

	res, err := s.store.Load(today, airfield)
	if err != nil {
		logging.Error("Could not load new day's flight log", "airfield", airfield, "date", today.String(), "error", err.Error())
		res = db.LoadResult{Log: entities.NewFlightLog(today, airfield)}
	}

	l.mu.Lock()
	if l.log.Date.Before(today) {
		l.log = res.Log
		l.skipped = res.Skipped
		l.version++
		logging.Info("Flight log rolled over",
			"airfield", airfield,
			"from", previous.Date.String(),
			"to", today.String(),
			"flights", len(res.Log.Flights),
			"skipped", res.Skipped,
		)
	}
	l.mu.Unlock()
	return l, today, nil
}

// persist saves snapshot unless a newer snapshot of the same day was already saved.
func (s *FlightLogService) persist(ctx context.Context, l *liveLog, snapshot entities.FlightLog, version uint64) (db.SaveResult, error) {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	if last, ok := l.saved[snapshot.Date]; ok && version < last {
		return db.SaveResult{}, nil
	}
	res, err := s.save(ctx, snapshot)
	if err != nil {
		return res, err
	}
	l.saved[snapshot.Date] = version
	for day := range l.saved {
		if day.Before(snapshot.Date) && len(l.saved) > 2 {
			delete(l.saved, day)
		}
	}
	return res, nil
}

// save writes a log to the store and, on success, to the archive.
func (s *FlightLogService) save(ctx context.Context, log entities.FlightLog) (db.SaveResult, error) {
	res, err := s.store.Save(log)
	if err != nil {
		logging.Error("Could not save flight log",
			"airfield", log.Airfield,
			"date", log.Date.String(),
			"written", res.Written,
			"error", err.Error(),
		)
		return res, err
	}
	logging.Debug("Flight log saved",
		"airfield", log.Airfield,
		"date", log.Date.String(),
		"written", res.Written,
		"unchanged", res.Unchanged,
	)

	if s.archive != nil && (res.Written > 0 || res.Removed > 0) {
		if aerr := s.archive.ArchiveDay(ctx, log); aerr != nil {
			s.metrics.IncArchiveWrite("failed")
			logging.Warn("Could not archive flight log", "airfield", log.Airfield, "date", log.Date.String(), "error", aerr.Error())
		} else {
			s.metrics.IncArchiveWrite("written")
		}
	}
	return res, nil
}

func (s *FlightLogService) fetch(ctx context.Context, day entities.Day, airfield string) ([]entities.Flight, error) {
	if s.feed == nil {
		return nil, nil
	}
	flights, err := s.feed.FetchFlights(ctx, day, airfield)
	if err != nil {
		logging.Warn("Feed fetch failed, keeping last known flight log",
			"airfield", airfield,
			"date", day.String(),
			"error", err.Error(),
		)
		return nil, err
	}
	return flights, nil
}

func (s *FlightLogService) recordMerge(airfield string, stats MergeStats) {
	s.metrics.AddMerged(airfield, "enriched", stats.Enriched)
	s.metrics.AddMerged(airfield, "corrected", stats.Corrected)
	s.metrics.AddMerged(airfield, "appended", stats.Appended)
}

// RefreshToday pulls today's flights of airfield from the feed, reconciles
// them into the live log and saves it. The log is saved even when the feed fails.
func (s *FlightLogService) RefreshToday(ctx context.Context, airfield string) (RefreshResult, error) {
	l, today, err := s.current(ctx, airfield)
	if err != nil {
		return RefreshResult{}, err
	}

	incoming, feedErr := s.fetch(ctx, today, airfield)

	var result RefreshResult
	result.FeedErr = feedErr

	l.mu.Lock()
	if feedErr == nil && l.log.Date == today {
		l.log.Flights, result.Merge = Reconcile(l.log.Flights, incoming)
		if result.Merge.Changed() {
			l.version++
		}
	}
	snapshot := l.log.Clone()
	version := l.version
	l.mu.Unlock()

	s.recordMerge(airfield, result.Merge)
	result.Save, err = s.persist(ctx, l, snapshot, version)
	return result, err
}

// Get returns the flight log of airfield for day. Today's log is served from
// memory; any other day is loaded, refreshed from the feed and saved.
func (s *FlightLogService) Get(ctx context.Context, airfield string, day entities.Day) (FlightLogView, error) {
	if day.IsZero() {
		day = s.Today()
	}
	if day == s.Today() {
		l, _, err := s.current(ctx, airfield)
		if err != nil {
			return FlightLogView{}, err
		}
		l.mu.Lock()
		view := FlightLogView{Log: l.log.Clone(), Skipped: l.skipped}
		l.mu.Unlock()
		return view, nil
	}

	// Roll the live log over first so its last save cannot land after ours.
	if _, _, err := s.current(ctx, airfield); err != nil {
		return FlightLogView{}, err
	}
	unlock := s.lockDay(airfield, day)
	defer unlock()

	res, err := s.refreshStored(ctx, airfield, day)
	if err != nil {
		return FlightLogView{}, err
	}
	return FlightLogView{Log: res.log, Skipped: res.Skipped}, nil
}

type storedRefresh struct {
	RefreshResult
	log entities.FlightLog
}

// refreshStored runs load, refresh and save for a day that is not kept in
// memory. The caller holds the day lock.
func (s *FlightLogService) refreshStored(ctx context.Context, airfield string, day entities.Day) (storedRefresh, error) {
	loaded, err := s.store.Load(day, airfield)
	if err != nil {
		return storedRefresh{}, err
	}
	out := storedRefresh{log: loaded.Log}
	out.Skipped = loaded.Skipped

	incoming, feedErr := s.fetch(ctx, day, airfield)
	out.FeedErr = feedErr
	if feedErr == nil {
		out.log.Flights, out.Merge = Reconcile(out.log.Flights, incoming)
		s.recordMerge(airfield, out.Merge)
	}

	out.Save, err = s.save(ctx, out.log)
	return out, err
}

// ApplyEdit applies one field edit to the log addressed by u. Malformed edits
// are a no-op reported in the outcome. Applied edits are journaled.
func (s *FlightLogService) ApplyEdit(ctx context.Context, u entities.Update) entities.EditOutcome {
	if u.Airfield == "" && len(s.airfields) > 0 {
		u.Airfield = s.airfields[0]
	}
	if u.Date.IsZero() {
		u.Date = s.Today()
	}

	var outcome entities.EditOutcome
	if _, err := s.liveFor(u.Airfield); err != nil {
		outcome = entities.EditOutcome{Reason: err.Error()}
	} else if u.Date == s.Today() {
		outcome = s.editToday(ctx, u)
	} else {
		outcome = s.editStored(ctx, u)
	}

	if !outcome.Applied {
		s.metrics.IncEdit("ignored")
		logging.Info("Edit ignored",
			"airfield", u.Airfield,
			"date", u.Date.String(),
			"flight_id", u.FlightID,
			"field", u.Field,
			"reason", outcome.Reason,
		)
		return outcome
	}

	s.metrics.IncEdit("applied")
	stored := s.journal.Append(u)
	logging.Debug("Edit applied",
		"id", stored.ID,
		"airfield", u.Airfield,
		"date", u.Date.String(),
		"flight_id", u.FlightID,
		"field", u.Field,
	)
	return outcome
}

func (s *FlightLogService) editToday(ctx context.Context, u entities.Update) entities.EditOutcome {
	l, today, err := s.current(ctx, u.Airfield)
	if err != nil {
		return entities.EditOutcome{Reason: err.Error()}
	}

	l.mu.Lock()
	if l.log.Date != today || u.Date != today {
		l.mu.Unlock()
		return s.editStored(ctx, u)
	}
	outcome := l.log.ApplyEdit(u)
	if !outcome.Applied {
		l.mu.Unlock()
		return outcome
	}
	l.version++
	snapshot := l.log.Clone()
	version := l.version
	l.mu.Unlock()

	// A failed save leaves memory ahead of disk; the next refresh writes it again.
	_, _ = s.persist(ctx, l, snapshot, version)
	return outcome
}

func (s *FlightLogService) editStored(ctx context.Context, u entities.Update) entities.EditOutcome {
	if _, _, err := s.current(ctx, u.Airfield); err != nil {
		return entities.EditOutcome{Reason: err.Error()}
	}
	unlock := s.lockDay(u.Airfield, u.Date)
	defer unlock()

	loaded, err := s.store.Load(u.Date, u.Airfield)
	if err != nil {
		return entities.EditOutcome{Reason: fmt.Sprintf("load %s: %v", u.Date, err)}
	}
	log := loaded.Log
	outcome := log.ApplyEdit(u)
	if !outcome.Applied {
		return outcome
	}
	if _, err := s.save(ctx, log); err != nil {
		return entities.EditOutcome{Reason: fmt.Sprintf("save %s: %v", u.Date, err)}
	}
	return outcome
}

// lockDay serializes load-mutate-save sequences on one stored day.
func (s *FlightLogService) lockDay(airfield string, day entities.Day) func() {
	key := airfield + "/" + day.String()

	s.dayLocksMu.Lock()
	mu, ok := s.dayLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.dayLocks[key] = mu
	}
	s.dayLocksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Flush saves the live log of every airfield. Used on shutdown.
func (s *FlightLogService) Flush(ctx context.Context) error {
	var errs []error
	for _, airfield := range s.airfields {
		l := s.live[airfield]
		l.mu.Lock()
		snapshot := l.log.Clone()
		version := l.version
		l.mu.Unlock()
		if _, err := s.persist(ctx, l, snapshot, version); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", airfield, err))
		}
	}
	return errors.Join(errs...)
}
