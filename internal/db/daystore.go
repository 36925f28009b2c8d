package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// ErrDataRootUnavailable means the data root cannot be created or written.
var ErrDataRootUnavailable = errors.New("data root unavailable")

// DayStore persists flight logs as one directory per day under a data root:
// <root>/YYYY/MM/DD[/AIRFIELD]/NN.json plus one crew file per directory.
// Files are only rewritten when their serialized content changes.
type DayStore struct {
	root    string
	metrics *metrics.MetricsRegistry
}

// SaveResult counts files written, files left alone because they were
// identical, and stale flight files removed.
type SaveResult struct {
	Written   int
	Unchanged int
	Removed   int
}

// LoadResult carries the loaded log and the number of flight files that had to be dropped.
type LoadResult struct {
	Log     entities.FlightLog
	Skipped int
}

// NewDayStore creates the data root if needed.
func NewDayStore(root string, m *metrics.MetricsRegistry) (*DayStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataRootUnavailable, root, err)
	}
	logging.Info("Data root ready", "path", root)
	return &DayStore{root: root, metrics: m}, nil
}

// Root returns the data root directory.
func (s *DayStore) Root() string { return s.root }

// PathFor returns the directory holding the files of a day. An empty airfield
// addresses the day directory itself.
func (s *DayStore) PathFor(day entities.Day, airfield string) string {
	p := filepath.Join(s.root,
		strconv.Itoa(day.Year),
		fmt.Sprintf("%02d", int(day.Month)),
		fmt.Sprintf("%02d", day.Day),
	)
	if airfield != "" {
		p = filepath.Join(p, airfield)
	}
	return p
}

// EnsureExists creates the day directory chain. It is a no-op when present.
func (s *DayStore) EnsureExists(day entities.Day, airfield string) error {
	p := s.PathFor(day, airfield)
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("create day directory %s: %w", p, err)
	}
	logging.Debug("Created day directory", "path", p)
	return nil
}

func flightFileName(index int) string {
	return fmt.Sprintf("%02d.json", index)
}

// SaveFlights writes one file per flight, named by its position in the list,
// then removes every other .json file of the directory except the crew file,
// including ones the store did not write, so the directory holds exactly flights. A failing file does not stop the others; all failures are
// returned joined.
func (s *DayStore) SaveFlights(day entities.Day, airfield string, flights []entities.Flight) (SaveResult, error) {
	var res SaveResult
	if err := s.EnsureExists(day, airfield); err != nil {
		return res, err
	}

	dir := s.PathFor(day, airfield)
	var errs []error
	for i, f := range flights {
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			errs = append(errs, fmt.Errorf("encode flight %d: %w", i, err))
			continue
		}
		written, err := writeIfChanged(filepath.Join(dir, flightFileName(i)), data)
		switch {
		case err != nil:
			errs = append(errs, err)
		case written:
			res.Written++
		default:
			res.Unchanged++
		}
	}

	removed, err := pruneFlightFiles(dir, len(flights))
	res.Removed = removed
	if err != nil {
		errs = append(errs, err)
	}

	s.metrics.AddStoreWrites("flight", "written", res.Written)
	s.metrics.AddStoreWrites("flight", "unchanged", res.Unchanged)
	s.metrics.AddStoreWrites("flight", "removed", res.Removed)
	s.metrics.AddStoreWrites("flight", "failed", len(errs))
	return res, errors.Join(errs...)
}

// LoadFlights reads every flight file of a day. Unreadable or unparseable
// files are logged and dropped; the count is returned so callers can surface it.
func (s *DayStore) LoadFlights(day entities.Day, airfield string) ([]entities.Flight, int, error) {
	dir := s.PathFor(day, airfield)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []entities.Flight{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read day directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if isFlightFile(e) {
			names = append(names, e.Name())
		}
	}
	sortFlightFiles(names)

	flights := make([]entities.Flight, 0, len(names))
	skipped := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Error("Could not read flight file", "path", path, "error", err.Error())
			quarantine(path)
			skipped++
			continue
		}
		var f entities.Flight
		if err := json.Unmarshal(data, &f); err != nil {
			logging.Error("Could not parse flight file", "path", path, "error", err.Error())
			quarantine(path)
			skipped++
			continue
		}
		flights = append(flights, f)
	}

	s.metrics.AddSkippedFiles(skipped)
	return flights, skipped, nil
}

// SaveCrew writes the crew file of a day when its content changed.
func (s *DayStore) SaveCrew(day entities.Day, airfield string, crew entities.CrewAssignment) (bool, error) {
	if err := s.EnsureExists(day, airfield); err != nil {
		return false, err
	}
	data, err := json.MarshalIndent(crew, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode crew: %w", err)
	}
	written, err := writeIfChanged(filepath.Join(s.PathFor(day, airfield), constants.CrewFileName), data)
	switch {
	case err != nil:
		s.metrics.AddStoreWrites("crew", "failed", 1)
	case written:
		s.metrics.AddStoreWrites("crew", "written", 1)
	default:
		s.metrics.AddStoreWrites("crew", "unchanged", 1)
	}
	return written, err
}

// LoadCrew reads the crew file of a day. A missing or broken file yields an empty assignment.
func (s *DayStore) LoadCrew(day entities.Day, airfield string) entities.CrewAssignment {
	var crew entities.CrewAssignment
	path := filepath.Join(s.PathFor(day, airfield), constants.CrewFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Could not read crew file", "path", path, "error", err.Error())
		}
		return crew
	}
	if err := json.Unmarshal(data, &crew); err != nil {
		logging.Warn("Could not parse crew file", "path", path, "error", err.Error())
		return entities.CrewAssignment{}
	}
	return crew
}

// Load reads a whole flight log. Absent days give an empty log.
func (s *DayStore) Load(day entities.Day, airfield string) (LoadResult, error) {
	flights, skipped, err := s.LoadFlights(day, airfield)
	if err != nil {
		return LoadResult{}, err
	}
	log := entities.NewFlightLog(day, airfield)
	log.Flights = flights
	log.Crew = s.LoadCrew(day, airfield)
	return LoadResult{Log: log, Skipped: skipped}, nil
}

// Save writes a whole flight log.
func (s *DayStore) Save(log entities.FlightLog) (SaveResult, error) {
	res, err := s.SaveFlights(log.Date, log.Airfield, log.Flights)
	written, crewErr := s.SaveCrew(log.Date, log.Airfield, log.Crew)
	if written {
		res.Written++
	} else if crewErr == nil {
		res.Unchanged++
	}
	return res, errors.Join(err, crewErr)
}

func isFlightFile(e fs.DirEntry) bool {
	name := e.Name()
	return !e.IsDir() && name != constants.CrewFileName && strings.HasSuffix(name, ".json")
}

// quarantine renames a flight file that could not be loaded so its slot can be
// reused by the next save without losing the original bytes. The new name no
// longer ends in .json and is ignored by LoadFlights.
func quarantine(path string) {
	target := path + ".corrupt-" + time.Now().UTC().Format("20060102T150405.000000000")
	if err := os.Rename(path, target); err != nil {
		logging.Warn("Could not move unreadable flight file aside", "path", path, "error", err.Error())
		return
	}
	logging.Warn("Moved unreadable flight file aside", "path", path, "to", target)
}

// pruneFlightFiles removes the flight files of dir that are not one of the
// first count positional names.
func pruneFlightFiles(dir string, count int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read day directory %s: %w", dir, err)
	}
	keep := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		keep[flightFileName(i)] = struct{}{}
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		if !isFlightFile(e) {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove stale flight file %s: %w", path, err))
			continue
		}
		logging.Debug("Removed stale flight file", "path", path)
		removed++
	}
	return removed, errors.Join(errs...)
}

// writeIfChanged replaces path with data unless the file already holds exactly data.
func writeIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// sortFlightFiles orders "NN.json" numerically; other names follow, sorted lexically.
func sortFlightFiles(names []string) {
	index := func(name string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		return n, err == nil
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, aok := index(names[i])
		b, bok := index(names[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return names[i] < names[j]
		}
	})
}
