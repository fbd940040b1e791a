package models

import "time"

// FetchOutcome is the per-city result of a load: either a snapshot with its
// fetch time, or an error message.
type FetchOutcome struct {
	OK        bool             `json:"ok"`
	CityID    CityID           `json:"cityId"`
	Data      *WeatherSnapshot `json:"data,omitempty"`
	FetchedAt *time.Time       `json:"fetchedAt,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func Success(id CityID, data WeatherSnapshot, fetchedAt time.Time) FetchOutcome {
	return FetchOutcome{
		OK:        true,
		CityID:    id,
		Data:      &data,
		FetchedAt: &fetchedAt,
	}
}

func Failure(id CityID, err error) FetchOutcome {
	return FetchOutcome{
		OK:     false,
		CityID: id,
		Error:  err.Error(),
	}
}

// LastUpdated returns the fetch time of the first successful outcome in order,
// or nil when none succeeded.
func LastUpdated(outcomes []FetchOutcome) *time.Time {
	for _, o := range outcomes {
		if o.OK && o.FetchedAt != nil {
			t := *o.FetchedAt
			return &t
		}
	}
	return nil
}
