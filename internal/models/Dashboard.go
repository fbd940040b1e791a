package models

import "time"

type Dashboard struct {
	Authenticated bool           `json:"authenticated" example:"true"`
	Cities        []CityID       `json:"cities"`
	Outcomes      []FetchOutcome `json:"outcomes"`
	LastUpdated   *time.Time     `json:"lastUpdated,omitempty"`
}
