package repositories

import (
	"context"
	"net/http"
	"time"

	"weather-dashboard/config"
	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

// WeatherRepository reads cities and snapshots from the weather backend.
// An empty token sends the request unauthenticated.
type WeatherRepository interface {
	Name() string
	ListCities(ctx context.Context, token string) ([]models.CityID, error)
	FetchWeather(ctx context.Context, id models.CityID, token string) (models.WeatherSnapshot, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func InitWeatherRepository(cfg *config.Config, l *logger.Logger) WeatherRepository {
	return NewBackendRepository(
		ResolveBaseURL(cfg.Backend.BaseURL, cfg.Server.Host, cfg.Server.Port),
		&http.Client{Timeout: time.Duration(cfg.Backend.Timeout) * time.Second},
		l,
	)
}
