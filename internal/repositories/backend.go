package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

const (
	citiesPath  = "/api/weather/cities"
	weatherPath = "/api/weather/"
)

// ErrNoBaseURL is returned when neither a configured base URL nor a request
// origin is available.
var ErrNoBaseURL = errors.New("backend base URL is not resolved")

// StatusError is a non-success response from the backend.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error (status %d): %s", e.StatusCode, e.Status)
}

type BackendRepository struct {
	BaseURL    string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewBackendRepository(baseURL string, httpClient HTTPClient, l *logger.Logger) *BackendRepository {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &BackendRepository{
		BaseURL:    baseURL,
		httpClient: httpClient,
		l:          l,
	}
}

func (b *BackendRepository) Name() string {
	return "backend"
}

func (b *BackendRepository) ListCities(ctx context.Context, token string) ([]models.CityID, error) {
	var ids []models.CityID
	if err := b.get(ctx, "cities", citiesPath, token, &ids); err != nil {
		return nil, err
	}

	if ids == nil {
		ids = []models.CityID{}
	}

	b.l.Debug("received city list", map[string]any{"cities": len(ids)})

	return ids, nil
}

func (b *BackendRepository) FetchWeather(ctx context.Context, id models.CityID, token string) (models.WeatherSnapshot, error) {
	var snapshot models.WeatherSnapshot
	if err := b.get(ctx, "weather", weatherPath+url.PathEscape(id.String()), token, &snapshot); err != nil {
		return models.WeatherSnapshot{}, err
	}

	return snapshot, nil
}

func (b *BackendRepository) baseURL(ctx context.Context) (string, error) {
	if b.BaseURL != "" {
		return b.BaseURL, nil
	}
	if origin := originFrom(ctx); origin != "" {
		return origin, nil
	}
	return "", ErrNoBaseURL
}

func (b *BackendRepository) get(ctx context.Context, endpoint, path, token string, out any) error {
	base, err := b.baseURL(ctx)
	if err != nil {
		return err
	}

	b.l.Debug("making backend request", map[string]any{
		"endpoint": endpoint,
		"path":     path,
		"auth":     token != "",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	metrics.BackendRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
