package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CityID names a city known to the backend. The city list endpoint may send
// ids either as JSON strings or as JSON numbers; both decode to the same value.
type CityID string

func (id *CityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("city id cannot be null")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to parse city id: %w", err)
		}
		*id = CityID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to parse city id %s: %w", string(data), err)
	}
	*id = CityID(n.String())
	return nil
}

func (id CityID) String() string {
	return string(id)
}
