package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlight_DecodeDefaults(t *testing.T) {
	var f Flight
	require.NoError(t, json.Unmarshal([]byte(`{"network_id": 3, "glider": "F-CERJ"}`), &f))

	assert.Equal(t, NewFlight(3, "F-CERJ"), f)
	assert.Equal(t, TakeoffUnknown, f.TakeoffCode)
	assert.False(t, f.Takeoff.IsKnown())
	assert.False(t, f.Landing.IsKnown())
}

func TestFlight_DecodeWrongTypes(t *testing.T) {
	var f Flight
	payload := `{
		"network_id": "7",
		"takeoff_code": 12,
		"glider": null,
		"pilot1": ["x"],
		"takeoff": "10:15",
		"landing": "not yet"
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &f))

	assert.Equal(t, 7, f.NetworkID)
	assert.Equal(t, TakeoffUnknown, f.TakeoffCode)
	assert.Empty(t, f.Glider)
	assert.Empty(t, f.Pilot1)
	assert.Equal(t, NewClock(10, 15, 0), f.Takeoff)
	assert.Equal(t, UnknownClock, f.Landing)
}

func TestFlight_DecodeRejectsNonObject(t *testing.T) {
	var f Flight
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{broken`), &f))
}

func TestFlight_RoundTrip(t *testing.T) {
	f := NewFlight(5, "F-ABCD")
	f.TakeoffCode = TakeoffTow
	f.TakeoffMachine = "F-BLIT"
	f.Pilot1 = "Walt Disney"
	f.Takeoff = NewClock(10, 15, 0)
	f.Landing = NewClock(11, 2, 0)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var back Flight
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}

func TestFlight_Duration(t *testing.T) {
	f := NewFlight(1, "F-CERJ")
	assert.Equal(t, 0, f.Duration())

	f.Takeoff = NewClock(10, 15, 0)
	f.Landing = NewClock(11, 2, 0)
	assert.Equal(t, 47, f.Duration())

	f.Landing = NewClock(9, 0, 0)
	assert.Equal(t, 0, f.Duration())
}

func TestParseTakeoffCode(t *testing.T) {
	assert.Equal(t, TakeoffWinch, ParseTakeoffCode("W"))
	assert.Equal(t, TakeoffWinch, ParseTakeoffCode("winch"))
	assert.Equal(t, TakeoffTow, ParseTakeoffCode("Tow"))
	assert.Equal(t, TakeoffTow, ParseTakeoffCode("aerotow"))
	assert.Equal(t, TakeoffUnknown, ParseTakeoffCode("catapult"))
}
