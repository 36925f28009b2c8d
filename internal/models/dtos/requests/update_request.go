package requests

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

// UpdateRequest is the body of POST /updates. Clients are loose about types,
// so flight_id and value are accepted as numbers or strings.
type UpdateRequest struct {
	FlightID int    `json:"flight_id"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Date     string `json:"date"`
	Airfield string `json:"airfield"`
}

func (r *UpdateRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := looseInt(raw["flight_id"])
	if err != nil {
		return fmt.Errorf("flight_id: %w", err)
	}
	*r = UpdateRequest{
		FlightID: id,
		Field:    looseString(raw["field"]),
		Value:    looseString(raw["value"]),
		Date:     looseString(raw["date"]),
		Airfield: strings.ToUpper(strings.TrimSpace(looseString(raw["airfield"]))),
	}
	return nil
}

// ToUpdate converts the request. An empty date addresses the current day.
func (r UpdateRequest) ToUpdate() (entities.Update, error) {
	u := entities.Update{
		FlightID: r.FlightID,
		Field:    r.Field,
		Value:    r.Value,
		Airfield: r.Airfield,
	}
	if strings.TrimSpace(r.Date) != "" {
		day, err := entities.ParseDay(r.Date)
		if err != nil {
			return entities.Update{}, err
		}
		u.Date = day
	}
	return u, nil
}

func looseString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(v, &n) == nil {
		return n.String()
	}
	return ""
}

func looseInt(v json.RawMessage) (int, error) {
	if len(v) == 0 || string(v) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", v)
	}
	return strconv.Atoi(strings.TrimSpace(s))
}
