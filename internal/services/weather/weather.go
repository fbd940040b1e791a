package weather

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"weather-dashboard/internal/auth"
	"weather-dashboard/internal/cache"
	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

const (
	DefaultTTL = 5 * time.Minute

	citiesFailureMessage = "Failed to load cities"
)

type Options struct {
	// TTL is the freshness window of cached snapshots.
	TTL time.Duration
	// MaxConcurrency bounds per-city fetches of one load; zero is unbounded.
	MaxConcurrency int
	Now            func() time.Time
}

// WeatherService resolves cities and their weather for a browser session,
// reading through the session's snapshot cache.
type WeatherService struct {
	repo           repositories.WeatherRepository
	store          cache.Store
	stats          *cache.Stats
	ttl            time.Duration
	maxConcurrency int
	now            func() time.Time
	l              *logger.Logger
}

func NewWeatherService(repo repositories.WeatherRepository, store cache.Store, stats *cache.Stats, opts Options, l *logger.Logger) *WeatherService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if stats == nil {
		stats = &cache.Stats{}
	}

	return &WeatherService{
		repo:           repo,
		store:          store,
		stats:          stats,
		ttl:            opts.TTL,
		maxConcurrency: opts.MaxConcurrency,
		now:            opts.Now,
		l:              l,
	}
}

// Cache returns the snapshot cache of a session.
func (s *WeatherService) Cache(session string) *cache.SnapshotCache {
	return cache.NewSnapshotCache(s.store, session, s.ttl, s.stats, s.l)
}

func (s *WeatherService) Stats() cache.StatsSnapshot {
	return s.stats.Snapshot()
}

// ListCities fetches the ordered city list. It is not retried.
func (s *WeatherService) ListCities(ctx context.Context, token string) ([]models.CityID, error) {
	ids, err := s.repo.ListCities(ctx, token)
	if err != nil {
		s.l.Warning("failed to load cities", map[string]any{"repo": s.repo.Name(), "err": err.Error()})
		return nil, newFetchFailure("", citiesFailureMessage, err)
	}

	return ids, nil
}

// GetWeather returns the cached snapshot of id while it is fresh, otherwise
// fetches it and caches the result. Cache errors never reach the caller.
func (s *WeatherService) GetWeather(ctx context.Context, session string, id models.CityID, token string) (models.FetchOutcome, error) {
	snapshots := s.Cache(session)

	if entry, ok := snapshots.Fresh(ctx, id, s.now()); ok {
		s.l.Debug("serving cached weather", map[string]any{"cityId": id.String(), "capturedAt": entry.CapturedAt()})
		return models.Success(id, entry.Data, entry.CapturedAt()), nil
	}

	s.l.Debug("fetching weather", map[string]any{"repo": s.repo.Name(), "cityId": id.String()})

	data, err := s.repo.FetchWeather(ctx, id, token)
	if err != nil {
		return models.FetchOutcome{}, newFetchFailure(id, "Failed to load weather for "+id.String(), err)
	}

	fetchedAt := s.now()
	snapshots.Put(ctx, id, models.NewCacheEntry(fetchedAt, data))

	return models.Success(id, data, fetchedAt), nil
}

// LoadAll fetches every city concurrently. The result has one outcome per
// id, in input order; a failed city becomes a failure outcome.
func (s *WeatherService) LoadAll(ctx context.Context, session string, ids []models.CityID, token string) []models.FetchOutcome {
	outcomes := make([]models.FetchOutcome, len(ids))

	g := new(errgroup.Group)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}

	for i, id := range ids {
		g.Go(func() error {
			outcome, err := s.GetWeather(ctx, session, id, token)
			if err != nil {
				s.logFetchFailure(id, err)
				outcome = models.Failure(id, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// logFetchFailure reports backend and transport failures at error level so
// they reach Sentry tagged with the city. Requests the backend rejected stay
// warnings.
func (s *WeatherService) logFetchFailure(id models.CityID, err error) {
	if Rejected(err) {
		s.l.Warning("failed to fetch weather", map[string]any{"cityId": id.String(), "err": err.Error()})
		return
	}
	s.l.Error(err, map[string]any{"cityId": id.String()})
}

// LoadDashboard runs the full load: token, city list, then every city.
// Network calls are never cancelled; once ctx is done the results are
// dropped and ErrDiscarded is returned instead.
func (s *WeatherService) LoadDashboard(ctx context.Context, session string, tokens auth.TokenProvider) (models.Dashboard, error) {
	start := time.Now()
	dashboard, err := s.loadDashboard(ctx, session, tokens)

	result := "ok"
	switch {
	case errors.Is(err, ErrDiscarded):
		result = "discarded"
	case err != nil:
		result = "error"
	}
	metrics.DashboardLoadDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	return dashboard, err
}

func (s *WeatherService) loadDashboard(ctx context.Context, session string, tokens auth.TokenProvider) (models.Dashboard, error) {
	work := context.WithoutCancel(ctx)

	token, err := tokens.Token(work)
	if err != nil {
		return models.Dashboard{}, errors.Wrap(err, "get access token")
	}

	ids, err := s.ListCities(work, token)
	if err != nil {
		return models.Dashboard{}, err
	}
	if ctx.Err() != nil {
		return models.Dashboard{}, ErrDiscarded
	}

	s.l.Info("starting weather load", map[string]any{
		"session": session,
		"cities":  len(ids),
	})

	outcomes := s.LoadAll(work, session, ids, token)
	if ctx.Err() != nil {
		return models.Dashboard{}, ErrDiscarded
	}

	dashboard := models.Dashboard{
		Authenticated: token != "",
		Cities:        ids,
		Outcomes:      outcomes,
		LastUpdated:   models.LastUpdated(outcomes),
	}

	s.l.Info("completed weather load", map[string]any{
		"session":   session,
		"cities":    len(ids),
		"succeeded": countSuccess(outcomes),
	})

	return dashboard, nil
}

func countSuccess(outcomes []models.FetchOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.OK {
			n++
		}
	}
	return n
}
