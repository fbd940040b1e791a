package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/swagger"

	_ "weather-dashboard/docs"
	"weather-dashboard/internal/auth"
	"weather-dashboard/internal/services/weather"
	"weather-dashboard/pkg/logger"
)

// Dependencies are the collaborators of the dashboard routes. Authenticator
// is set only for browser login; otherwise Tokens authenticates every request.
type Dependencies struct {
	Service       *weather.WeatherService
	Sessions      *session.Store
	Authenticator *auth.Authenticator
	Tokens        auth.TokenProvider
	CacheDriver   string
	// PublicURL is where the browser returns after logout; empty means the request origin.
	PublicURL string
}

type routes struct {
	service     *weather.WeatherService
	sessions    *session.Store
	authn       *auth.Authenticator
	tokens      auth.TokenProvider
	cacheDriver string
	publicURL   string
	l           *logger.Logger
}

func NewRouter(
	app *fiber.App,
	deps Dependencies,
	l *logger.Logger,
) {
	r := &routes{
		service:     deps.Service,
		sessions:    deps.Sessions,
		authn:       deps.Authenticator,
		tokens:      deps.Tokens,
		cacheDriver: deps.CacheDriver,
		publicURL:   deps.PublicURL,
		l:           l,
	}
	if r.sessions == nil {
		r.sessions = session.New()
	}
	if r.tokens == nil {
		r.tokens = auth.Anonymous{}
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.New(swagger.Config{
		DeepLinking: true,
	}))

	app.Get("/", r.handleRoot)

	api := app.Group("/api")
	api.Get("/dashboard", r.handleDashboard)
	api.Get("/dashboard/cities/:cityId", r.handleCityDetail)
	api.Get("/cache/stats", r.handleCacheStats)
	api.Post("/cache/clear", r.handleCacheClear)

	authGroup := app.Group("/auth")
	authGroup.Get("/me", r.handleMe)
	authGroup.Get("/login", r.handleLogin)
	authGroup.Get("/callback", r.handleCallback)
	authGroup.Get("/logout", r.handleLogout)
}

func (r *routes) handleRoot(c *fiber.Ctx) error {
	return c.Redirect("/api/dashboard", fiber.StatusFound)
}
