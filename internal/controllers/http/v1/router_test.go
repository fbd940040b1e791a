package http

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/internal/auth"
	"weather-dashboard/internal/cache"
	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/internal/services/weather"
	"weather-dashboard/pkg/logger"
)

type fakeBackend struct {
	*httptest.Server
	// citiesStarted and citiesRelease, when set, hold the city list
	// response until the test releases it.
	citiesStarted chan struct{}
	citiesRelease chan struct{}

	mu          sync.Mutex
	failCities  bool
	failing     map[string]bool
	weatherHits map[string]int
	auth        []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{failing: map[string]bool{}, weatherHits: map[string]int{}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/weather/cities" && b.citiesRelease != nil {
			close(b.citiesStarted)
			<-b.citiesRelease
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		b.auth = append(b.auth, r.Header.Get("Authorization"))

		if r.URL.Path == "/api/weather/cities" {
			if b.failCities {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`["A", 2]`))
			return
		}

		id := r.URL.Path[len("/api/weather/"):]
		b.weatherHits[id]++
		if b.failing[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(models.WeatherSnapshot{CityName: "city-" + id, Humidity: 50})
	}))
	t.Cleanup(b.Close)

	return b
}

func (b *fakeBackend) hits(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weatherHits[id]
}

func newTestApp(t *testing.T, backend *fakeBackend, deps Dependencies) *fiber.App {
	t.Helper()

	l := logger.NewZapLogger("test-app")
	repo := repositories.NewBackendRepository(backend.URL, backend.Client(), l)
	deps.Service = weather.NewWeatherService(repo, cache.NewMemoryStore(0), nil, weather.Options{}, l)
	if deps.CacheDriver == "" {
		deps.CacheDriver = "memory"
	}

	app := fiber.New()
	NewRouter(app, deps, l)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, cookies []*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestDashboard_Success(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	dashboard := decode[models.Dashboard](t, resp)
	assert.Equal(t, []models.CityID{"A", "2"}, dashboard.Cities)
	require.Len(t, dashboard.Outcomes, 2)
	assert.True(t, dashboard.Outcomes[0].OK)
	assert.Equal(t, "city-2", dashboard.Outcomes[1].Data.CityName)
	assert.NotNil(t, dashboard.LastUpdated)
	assert.False(t, dashboard.Authenticated)
}

func TestDashboard_SessionCacheReused(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{})

	first := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, first.StatusCode)
	cookies := first.Cookies()
	require.NotEmpty(t, cookies)

	second := doRequest(t, app, fiber.MethodGet, "/api/dashboard", cookies)
	require.Equal(t, fiber.StatusOK, second.StatusCode)
	assert.Equal(t, 1, backend.hits("A"))

	// a new browser session does not see the cache of the first one
	third := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, third.StatusCode)
	assert.Equal(t, 2, backend.hits("A"))

	stats := decode[CacheStatsResponse](t, doRequest(t, app, fiber.MethodGet, "/api/cache/stats", cookies))
	assert.Equal(t, "memory", stats.CacheType)
	assert.Equal(t, int64(300), stats.TTLSeconds)
	assert.Equal(t, "5 minutes (300 seconds)", stats.CacheTTL)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(2), stats.HitCount)
	assert.Equal(t, int64(4), stats.MissCount)
	assert.Equal(t, "33.33%", stats.HitRate)
}

func TestDashboard_CityListFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.failCities = true
	app := newTestApp(t, backend, Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to load cities", decode[ErrorResponse](t, resp).Error)
	assert.Zero(t, backend.hits("A"))
}

func TestDashboard_PerCityFailureInline(t *testing.T) {
	backend := newFakeBackend(t)
	backend.failing["2"] = true
	app := newTestApp(t, backend, Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	dashboard := decode[models.Dashboard](t, resp)
	assert.True(t, dashboard.Outcomes[0].OK)
	assert.False(t, dashboard.Outcomes[1].OK)
	assert.Equal(t, "Failed to load weather for 2", dashboard.Outcomes[1].Error)
}

func TestDashboard_StaticToken(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{Tokens: auth.Static("tok-1")})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.Dashboard](t, resp).Authenticated)
	assert.Contains(t, backend.auth, "Bearer tok-1")

	me := decode[MeResponse](t, doRequest(t, app, fiber.MethodGet, "/auth/me", nil))
	assert.True(t, me.IsAuthenticated)
}

func TestDashboard_DiscardedOnShutdown(t *testing.T) {
	backend := newFakeBackend(t)
	backend.citiesStarted = make(chan struct{})
	backend.citiesRelease = make(chan struct{})
	app := newTestApp(t, backend, Dependencies{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	addr := ln.Addr().String()

	type result struct {
		status int
		body   []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/api/dashboard")
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		done <- result{status: resp.StatusCode, body: body}
	}()

	select {
	case <-backend.citiesStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard load never reached the backend")
	}

	shutdown := make(chan error, 1)
	go func() { shutdown <- app.ShutdownWithTimeout(5 * time.Second) }()

	// the request context is done right after the listener closes
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return true
		}
		_ = conn.Close()
		return false
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	close(backend.citiesRelease)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, statusClientClosedRequest, res.status)
		assert.Empty(t, res.body)
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard request did not complete")
	}
	assert.NoError(t, <-shutdown)
	assert.Zero(t, backend.hits("A"))
}

func TestDashboard_AuthFailure(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{Tokens: auth.Static("")})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, backend.auth)
}

func TestCityDetail(t *testing.T) {
	backend := newFakeBackend(t)
	backend.failing["B"] = true
	app := newTestApp(t, backend, Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard/cities/A", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	outcome := decode[models.FetchOutcome](t, resp)
	assert.True(t, outcome.OK)
	assert.Equal(t, "city-A", outcome.Data.CityName)

	resp = doRequest(t, app, fiber.MethodGet, "/api/dashboard/cities/B", nil)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	outcome = decode[models.FetchOutcome](t, resp)
	assert.False(t, outcome.OK)
	assert.Equal(t, models.CityID("B"), outcome.CityID)
}

func TestCacheClear(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{})

	first := doRequest(t, app, fiber.MethodGet, "/api/dashboard", nil)
	cookies := first.Cookies()

	resp := doRequest(t, app, fiber.MethodPost, "/api/cache/clear", cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[CacheClearResponse](t, resp).Removed)

	doRequest(t, app, fiber.MethodGet, "/api/dashboard", cookies)
	assert.Equal(t, 2, backend.hits("A"))
}

func TestRootRedirect(t *testing.T) {
	app := newTestApp(t, newFakeBackend(t), Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/dashboard", resp.Header.Get("Location"))
}

func TestLogin_DisabledWithoutIssuer(t *testing.T) {
	app := newTestApp(t, newFakeBackend(t), Dependencies{})

	resp := doRequest(t, app, fiber.MethodGet, "/auth/login", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	me := decode[MeResponse](t, doRequest(t, app, fiber.MethodGet, "/auth/me", nil))
	assert.False(t, me.IsAuthenticated)

	resp = doRequest(t, app, fiber.MethodGet, "/auth/logout", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func newTestIssuer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"issuer":                 server.URL,
				"authorization_endpoint": server.URL + "/authorize",
				"token_endpoint":         server.URL + "/oauth/token",
				"jwks_uri":               server.URL + "/jwks",
			})
		case "/oauth/token":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "user-token",
				"refresh_token": "refresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestLoginFlow(t *testing.T) {
	issuer := newTestIssuer(t)
	authn, err := auth.NewAuthenticator(t.Context(), auth.Options{
		Issuer:      issuer.URL,
		ClientID:    "client-123",
		RedirectURL: "http://example.com/auth/callback",
		HTTPClient:  issuer.Client(),
		Timeout:     time.Second,
	})
	require.NoError(t, err)

	backend := newFakeBackend(t)
	app := newTestApp(t, backend, Dependencies{Authenticator: authn, PublicURL: "http://example.com"})

	me := decode[MeResponse](t, doRequest(t, app, fiber.MethodGet, "/auth/me", nil))
	assert.False(t, me.IsAuthenticated)

	login := doRequest(t, app, fiber.MethodGet, "/auth/login", nil)
	require.Equal(t, fiber.StatusFound, login.StatusCode)
	cookies := login.Cookies()

	location, err := url.Parse(login.Header.Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	bad := doRequest(t, app, fiber.MethodGet, "/auth/callback?code=abc&state=wrong", cookies)
	assert.Equal(t, fiber.StatusBadRequest, bad.StatusCode)

	// the failed attempt consumed the state; start again
	login = doRequest(t, app, fiber.MethodGet, "/auth/login", cookies)
	location, _ = url.Parse(login.Header.Get("Location"))
	state = location.Query().Get("state")

	callback := doRequest(t, app, fiber.MethodGet, "/auth/callback?code=abc&state="+state, cookies)
	require.Equal(t, fiber.StatusFound, callback.StatusCode)
	assert.Equal(t, "/", callback.Header.Get("Location"))

	me = decode[MeResponse](t, doRequest(t, app, fiber.MethodGet, "/auth/me", cookies))
	assert.True(t, me.IsAuthenticated)

	resp := doRequest(t, app, fiber.MethodGet, "/api/dashboard", cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.Dashboard](t, resp).Authenticated)
	assert.Contains(t, backend.auth, "Bearer user-token")

	logout := doRequest(t, app, fiber.MethodGet, "/auth/logout", cookies)
	require.Equal(t, fiber.StatusFound, logout.StatusCode)
	logoutURL, err := url.Parse(logout.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", logoutURL.Path)
	assert.Equal(t, "http://example.com", logoutURL.Query().Get("returnTo"))

	me = decode[MeResponse](t, doRequest(t, app, fiber.MethodGet, "/auth/me", cookies))
	assert.False(t, me.IsAuthenticated)
}
