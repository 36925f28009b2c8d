package services

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

func flight(id int, glider string, takeoff, landing entities.Clock) entities.Flight {
	f := entities.NewFlight(id, glider)
	f.Takeoff = takeoff
	f.Landing = landing
	return f
}

func hm(h, m int) entities.Clock { return entities.NewClock(h, m, 0) }

func TestReconcile_EndToEnd(t *testing.T) {
	existing := []entities.Flight{flight(5, "F-ABCD", entities.UnknownClock, entities.UnknownClock)}
	existing[0].Pilot1 = "Walt Disney"
	existing[0].FlightCode = "training"
	existing[0].TakeoffCode = entities.TakeoffWinch
	existing[0].TakeoffMachine = "yellow"

	incoming := []entities.Flight{flight(5, "F-ABCD", hm(10, 15), hm(11, 2))}
	incoming[0].TakeoffCode = entities.TakeoffTow

	merged, stats := Reconcile(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, MergeStats{Matched: 1, Enriched: 1}, stats)

	want := flight(5, "F-ABCD", hm(10, 15), hm(11, 2))
	want.Pilot1 = "Walt Disney"
	want.FlightCode = "training"
	want.TakeoffCode = entities.TakeoffWinch
	want.TakeoffMachine = "yellow"
	assert.Equal(t, want, merged[0])
}

func TestReconcile_SentinelPreserving(t *testing.T) {
	existing := []entities.Flight{flight(1, "F-CERJ", hm(9, 30), entities.UnknownClock)}
	incoming := []entities.Flight{flight(1, "F-CERJ", hm(9, 32), hm(10, 0))}

	merged, _ := Reconcile(existing, incoming)
	assert.Equal(t, hm(9, 30), merged[0].Takeoff)
	assert.Equal(t, hm(10, 0), merged[0].Landing)

	incoming = []entities.Flight{flight(1, "F-CERJ", entities.UnknownClock, hm(10, 5))}
	merged, _ = Reconcile(merged, incoming)
	assert.Equal(t, hm(9, 30), merged[0].Takeoff)
	assert.Equal(t, hm(10, 0), merged[0].Landing)
}

func TestReconcile_AppendsNewFlightOnce(t *testing.T) {
	existing := []entities.Flight{flight(1, "F-CERJ", hm(9, 30), hm(10, 0))}
	incoming := []entities.Flight{
		flight(1, "F-CERJ", hm(9, 30), hm(10, 0)),
		flight(2, "F-CERK", hm(11, 0), entities.UnknownClock),
	}

	merged, stats := Reconcile(slices.Clone(existing), incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, 1, stats.Appended)
	assert.Equal(t, incoming[1], merged[1])
}

func TestReconcile_Idempotent(t *testing.T) {
	existing := []entities.Flight{
		flight(1, "F-CERJ", entities.UnknownClock, entities.UnknownClock),
		flight(7, "F-CEJU", hm(8, 0), hm(8, 40)),
	}
	incoming := []entities.Flight{
		flight(1, "F-CERJ", hm(9, 0), hm(9, 45)),
		flight(2, "F-CERK", hm(11, 0), entities.UnknownClock),
		flight(3, "F-CLMT", hm(12, 0), hm(12, 30)),
	}

	once, _ := Reconcile(slices.Clone(existing), incoming)
	onceCopy := slices.Clone(once)
	twice, stats := Reconcile(once, incoming)

	assert.Equal(t, onceCopy, twice)
	assert.Equal(t, MergeStats{Matched: 3}, stats)
	assert.False(t, stats.Changed())
}

// Negative ids are the feed's provisional marker. The rule below is kept as
// observed: a provisional id overwrites the latest flight of the same glider,
// and within one pass the id closest to zero wins for each glider.
func TestReconcile_ProvisionalIDCorrectsSameGlider(t *testing.T) {
	existing := []entities.Flight{flight(4, "F-CERJ", hm(10, 0), entities.UnknownClock)}
	existing[0].Pilot1 = "Roy Disney"
	incoming := []entities.Flight{flight(-3, "F-CERJ", hm(10, 2), hm(10, 50))}
	incoming[0].TakeoffCode = entities.TakeoffTow

	merged, stats := Reconcile(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, MergeStats{Corrected: 1}, stats)
	assert.Equal(t, -3, merged[0].NetworkID)
	assert.Equal(t, entities.TakeoffTow, merged[0].TakeoffCode)
	assert.Equal(t, hm(10, 2), merged[0].Takeoff)
	assert.Equal(t, hm(10, 50), merged[0].Landing)
	assert.Equal(t, "Roy Disney", merged[0].Pilot1)
}

func TestReconcile_ProvisionalIDOutRanked(t *testing.T) {
	existing := []entities.Flight{flight(4, "F-CERJ", hm(10, 0), entities.UnknownClock)}
	incoming := []entities.Flight{
		flight(-5, "F-CERJ", hm(10, 1), entities.UnknownClock),
		flight(-2, "F-CERJ", hm(10, 2), hm(10, 50)),
		flight(-9, "F-CERJ", hm(13, 0), hm(13, 20)),
	}

	merged, stats := Reconcile(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, 2, stats.Corrected)
	assert.Equal(t, 1, stats.Appended)
	assert.Equal(t, -2, merged[0].NetworkID)
	assert.Equal(t, hm(10, 50), merged[0].Landing)
	assert.Equal(t, -9, merged[1].NetworkID)
}

func TestReconcile_ExactMatchBeatsProvisional(t *testing.T) {
	existing := []entities.Flight{
		flight(-1, "F-CERJ", hm(9, 0), entities.UnknownClock),
		flight(3, "F-CERJ", hm(11, 0), entities.UnknownClock),
	}
	incoming := []entities.Flight{flight(-1, "F-CERJ", hm(9, 5), hm(9, 40))}

	merged, stats := Reconcile(existing, incoming)
	assert.Equal(t, MergeStats{Matched: 1, Enriched: 1}, stats)
	assert.Equal(t, hm(9, 0), merged[0].Takeoff)
	assert.Equal(t, hm(9, 40), merged[0].Landing)
	assert.Equal(t, 3, merged[1].NetworkID)
}

func TestReconcile_PositiveIDOfKnownGliderIsAppended(t *testing.T) {
	existing := []entities.Flight{flight(1, "F-CERJ", hm(9, 0), hm(9, 30))}
	incoming := []entities.Flight{flight(6, "F-CERJ", hm(14, 0), hm(14, 45))}

	merged, stats := Reconcile(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, MergeStats{Appended: 1}, stats)
	assert.True(t, stats.Changed())
}

func TestReconcile_EmptyInputs(t *testing.T) {
	merged, stats := Reconcile(nil, nil)
	assert.Empty(t, merged)
	assert.False(t, stats.Changed())
}
