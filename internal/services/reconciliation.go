package services

import "github.com/planche-electronique/cepo/internal/models/entities"

// MergeStats counts what a reconciliation pass did with the incoming flights.
type MergeStats struct {
	// Matched flights had the network id of an existing flight.
	Matched int
	// Enriched flights are the matched ones that filled at least one unknown time.
	Enriched int
	// Corrected flights carried a provisional (negative) id and overwrote a flight of the same glider.
	Corrected int
	// Appended flights had no local record yet.
	Appended int
}

func (s MergeStats) Changed() bool {
	return s.Corrected > 0 || s.Appended > 0 || s.Enriched > 0
}

type gliderCandidate struct {
	priority int
	index    int
}

// Reconcile merges feed-observed flights into the existing flights of a day
// and returns the resulting list. existing is modified in place.
//
// For each incoming flight, in feed order:
//  1. same network id: copy takeoff and landing only where the local value is still unknown;
//  2. otherwise, when the incoming id is negative and greater than every negative id already
//     matched for that glider during this pass, overwrite id, takeoff code and times of the
//     most recent local flight of that glider;
//  3. otherwise append the flight.
//
// Rule 2 is kept as the feed historically behaved: provisional ids are negative
// and the one closest to zero wins. The candidate bookkeeping is per glider and
// lives for the whole pass.
func Reconcile(existing []entities.Flight, incoming []entities.Flight) ([]entities.Flight, MergeStats) {
	var stats MergeStats

	byID := make(map[int]int, len(existing)+len(incoming))
	lastByGlider := make(map[string]int, len(existing))
	for i, f := range existing {
		if _, dup := byID[f.NetworkID]; !dup {
			byID[f.NetworkID] = i
		}
		lastByGlider[f.Glider] = i
	}
	candidates := make(map[string]gliderCandidate)

	for _, in := range incoming {
		if i, ok := byID[in.NetworkID]; ok {
			e := &existing[i]
			filled := false
			if !e.Takeoff.IsKnown() && in.Takeoff.IsKnown() {
				e.Takeoff = in.Takeoff
				filled = true
			}
			if !e.Landing.IsKnown() && in.Landing.IsKnown() {
				e.Landing = in.Landing
				filled = true
			}
			stats.Matched++
			if filled {
				stats.Enriched++
			}
			continue
		}

		if target, ok := lastByGlider[in.Glider]; ok && in.NetworkID < 0 {
			cand, seen := candidates[in.Glider]
			if !seen || in.NetworkID > cand.priority {
				candidates[in.Glider] = gliderCandidate{priority: in.NetworkID, index: target}

				e := &existing[target]
				if byID[e.NetworkID] == target {
					delete(byID, e.NetworkID)
				}
				e.NetworkID = in.NetworkID
				e.TakeoffCode = in.TakeoffCode
				e.Takeoff = in.Takeoff
				e.Landing = in.Landing
				byID[e.NetworkID] = target
				stats.Corrected++
				continue
			}
		}

		existing = append(existing, in)
		idx := len(existing) - 1
		byID[in.NetworkID] = idx
		lastByGlider[in.Glider] = idx
		stats.Appended++
	}

	return existing, stats
}
