package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/multierr"

	"weather-dashboard/config"
	v1 "weather-dashboard/internal/controllers/http/v1"
	"weather-dashboard/internal/auth"
	"weather-dashboard/internal/cache"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/internal/services/weather"
	"weather-dashboard/pkg/httpserver"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/observe"
)

// @title Weather Dashboard
// @version 1.0.0
// @description Session-scoped weather dashboard over the weather backend API.
// @description Loads the city list, fans out one cached-or-live fetch per city and reports failures per city.

// @contact.name Weather Dashboard Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /
// @schemes http https

// @tag.name Dashboard
// @tag.description Dashboard load and city detail
// @tag.name Cache
// @tag.description Session snapshot cache
// @tag.name Auth
// @tag.description Identity provider login
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	hook := observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.IsDevelopment(), cnf.Sentry.DSN)

	l := logger.NewZapLogger(cnf.App.Name, os.Stdout, hook).WithEnv(cnf.App.Env)
	l.SetLevel(cnf.Log.Level)
	hook.SetLogger(l)

	store, err := newStore(ctx, cnf)
	if err != nil {
		l.Fatal("cannot init cache store", map[string]any{"driver": cnf.Cache.Driver, "err": err.Error()})
	}

	deps := v1.Dependencies{
		Sessions: session.New(session.Config{
			Expiration:     cnf.Cache.SessionTTL,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
			CookieSecure:   cnf.IsProduction(),
		}),
		CacheDriver: driverName(store),
		PublicURL:   cnf.PublicBaseURL(),
	}

	if err := initAuth(ctx, cnf, &deps); err != nil {
		l.Fatal("cannot init authentication", map[string]any{"mode": cnf.Auth.Mode, "err": err.Error()})
	}

	repo := repositories.InitWeatherRepository(cnf, l)

	deps.Service = weather.NewWeatherService(repo, store, &cache.Stats{}, weather.Options{
		TTL:            cnf.Cache.TTL,
		MaxConcurrency: cnf.Backend.MaxConcurrency,
	}, l)

	app := httpserver.InitFiberServer(httpserver.Options{
		AppName:      cnf.App.Name,
		ReadTimeout:  time.Duration(cnf.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cnf.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cnf.Server.IdleTimeout) * time.Second,
		AllowOrigins: cnf.Server.AllowOrigins,
		Ready:        readiness(store),
	})

	v1.NewRouter(
		app,
		deps,
		l,
	)

	go func() {
		if err := app.Listen(cnf.Addr()); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err.Error()})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":        cnf.Server.Port,
		"cacheDriver": cnf.Cache.Driver,
		"authMode":    cnf.Auth.Mode,
		"backend":     repo.Name(),
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		err := multierr.Combine(
			app.ShutdownWithContext(shutdownCtx),
			store.Close(),
		)
		if err != nil {
			l.Error(err)
		}

		hook.Flush()
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}

func newStore(ctx context.Context, cnf *config.Config) (cache.Store, error) {
	if cnf.Cache.Driver != "redis" {
		return cache.NewMemoryStore(cnf.Cache.SessionTTL), nil
	}

	store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
		Address:  cnf.Cache.Redis.Address,
		Password: cnf.Cache.Redis.Password,
		DB:       cnf.Cache.Redis.DB,
		Lifetime: cnf.Cache.SessionTTL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func driverName(store cache.Store) string {
	if d, ok := store.(cache.Driver); ok {
		return d.Driver()
	}
	return "unknown"
}

func initAuth(ctx context.Context, cnf *config.Config, deps *v1.Dependencies) error {
	opts := auth.Options{
		Issuer:       cnf.Auth.Issuer,
		ClientID:     cnf.Auth.ClientID,
		ClientSecret: cnf.Auth.ClientSecret,
		Audience:     cnf.Auth.Audience,
		Scopes:       cnf.Auth.Scopes,
		RedirectURL:  cnf.PublicBaseURL() + "/auth/callback",
	}

	switch cnf.Auth.Mode {
	case "static":
		deps.Tokens = auth.Static(cnf.Auth.StaticToken)
	case "client_credentials":
		tokens, err := auth.NewClientCredentials(ctx, opts)
		if err != nil {
			return err
		}
		deps.Tokens = tokens
	case "oidc":
		authn, err := auth.NewAuthenticator(ctx, opts)
		if err != nil {
			return err
		}
		deps.Authenticator = authn
	default:
		deps.Tokens = auth.Anonymous{}
	}

	return nil
}

func readiness(store cache.Store) func(*fiber.Ctx) bool {
	pinger, ok := store.(interface {
		Ping(ctx context.Context) error
	})
	if !ok {
		return nil
	}

	return func(c *fiber.Ctx) bool {
		return pinger.Ping(c.UserContext()) == nil
	}
}
