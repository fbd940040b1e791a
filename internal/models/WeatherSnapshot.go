package models

import "time"

// WeatherSnapshot is the weather of one city at the moment it was fetched.
type WeatherSnapshot struct {
	CityName    string  `json:"cityName" example:"London"`
	Description string  `json:"description" example:"light rain"`
	Temperature float64 `json:"temperature" example:"14.2"`
	TempMin     float64 `json:"tempMin" example:"12.8"`
	TempMax     float64 `json:"tempMax" example:"15.9"`
	Humidity    int     `json:"humidity" example:"81"`
	WindSpeed   float64 `json:"windSpeed" example:"4.6"`
	Sunrise     int64   `json:"sunrise" example:"1753417463"`
	Sunset      int64   `json:"sunset" example:"1753474291"`
}

func (w WeatherSnapshot) SunriseTime() time.Time {
	return time.Unix(w.Sunrise, 0)
}

func (w WeatherSnapshot) SunsetTime() time.Time {
	return time.Unix(w.Sunset, 0)
}
