package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]Clock{
		"10:15":    NewClock(10, 15, 0),
		"10h15":    NewClock(10, 15, 0),
		"10:15:30": NewClock(10, 15, 30),
		" 09:05 ":  NewClock(9, 5, 0),
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("")
	assert.Error(t, err)
}

func TestClock_StringAndSub(t *testing.T) {
	assert.Equal(t, "10:15", NewClock(10, 15, 0).String())
	assert.Equal(t, "10:15:07", NewClock(10, 15, 7).String())
	assert.Equal(t, "00:00", UnknownClock.String())
	assert.Equal(t, 47*time.Minute, NewClock(11, 2, 0).Sub(NewClock(10, 15, 0)))
	assert.False(t, UnknownClock.IsKnown())
}

func TestClock_JSONIsLenient(t *testing.T) {
	var c Clock
	require.NoError(t, json.Unmarshal([]byte(`"14h14"`), &c))
	assert.Equal(t, NewClock(14, 14, 0), c)

	for _, in := range []string{`null`, `""`, `"later"`, `42`} {
		c = NewClock(1, 0, 0)
		require.NoError(t, json.Unmarshal([]byte(in), &c), in)
		assert.Equal(t, UnknownClock, c, in)
	}

	out, err := json.Marshal(NewClock(11, 2, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `"11:02"`, string(out))
}

func TestDay(t *testing.T) {
	d, err := ParseDay("2023/04/25")
	require.NoError(t, err)
	assert.Equal(t, Day{Year: 2023, Month: time.April, Day: 25}, d)

	iso, err := ParseDay("2023-04-25")
	require.NoError(t, err)
	assert.Equal(t, d, iso)
	assert.Equal(t, "2023-04-25", d.ISO())
	assert.Equal(t, "2023/04/25", d.String())

	_, err = ParseDay("25/04/2023")
	assert.Error(t, err)

	next := Day{Year: 2023, Month: time.April, Day: 26}
	assert.True(t, d.Before(next))
	assert.False(t, next.Before(d))
	assert.True(t, Day{}.IsZero())

	var decoded struct {
		Date Day `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023/04/25"}`), &decoded))
	assert.Equal(t, d, decoded.Date)
	assert.Error(t, json.Unmarshal([]byte(`{"date":"tomorrow"}`), &decoded))
}
