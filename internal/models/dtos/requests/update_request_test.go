package requests

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

func TestUpdateRequest_LooseTypes(t *testing.T) {
	var req UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"flight_id":"4","field":"takeoff","value":"12:24","date":"2023/04/25","airfield":" lfle "}`), &req))
	assert.Equal(t, 4, req.FlightID)
	assert.Equal(t, "LFLE", req.Airfield)

	u, err := req.ToUpdate()
	require.NoError(t, err)
	assert.Equal(t, entities.Day{Year: 2023, Month: time.April, Day: 25}, u.Date)
	assert.Equal(t, "12:24", u.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"flight_id":2,"field":"pilot1","value":7}`), &req))
	assert.Equal(t, 2, req.FlightID)
	assert.Equal(t, "7", req.Value)
	u, err = req.ToUpdate()
	require.NoError(t, err)
	assert.True(t, u.Date.IsZero())
}

func TestUpdateRequest_Invalid(t *testing.T) {
	var req UpdateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"flight_id":"four"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &req))

	req = UpdateRequest{FlightID: 1, Field: "pilot1", Date: "25 april"}
	_, err := req.ToUpdate()
	assert.Error(t, err)
}
