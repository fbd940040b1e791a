package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"weather-dashboard/internal/auth"
	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/internal/services/weather"
)

// statusClientClosedRequest is sent when the load finished after the request
// context was cancelled. The fasthttp request context is done once the server
// starts shutting down.
const statusClientClosedRequest = 499

// GetDashboard godoc
// @Summary Load the dashboard
// @Description Loads the city list and the weather of every city for the current session. Failed cities are reported inline.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.Dashboard "Successful response"
// @Failure 401 {object} ErrorResponse "No access token could be obtained"
// @Failure 502 {object} ErrorResponse "City list could not be loaded"
// @Router /api/dashboard [get]
func (r *routes) handleDashboard(c *fiber.Ctx) error {
	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	tokens, src := r.sessionTokens(sess)
	ctx := repositories.WithOrigin(c.Context(), c.BaseURL())

	dashboard, err := r.service.LoadDashboard(ctx, sess.ID(), tokens)
	r.persistRefreshed(sess, src)
	if err != nil {
		r.dropRejectedToken(sess, src, err)
		return r.loadFailed(c, sess.ID(), err)
	}

	return c.JSON(dashboard)
}

// GetCityDetail godoc
// @Summary City detail
// @Description Returns the weather of one city, from the session cache while fresh.
// @Tags Dashboard
// @Produce json
// @Param cityId path string true "City identifier"
// @Success 200 {object} models.FetchOutcome "Successful response"
// @Failure 401 {object} ErrorResponse "No access token could be obtained"
// @Failure 502 {object} models.FetchOutcome "Weather could not be loaded"
// @Router /api/dashboard/cities/{cityId} [get]
func (r *routes) handleCityDetail(c *fiber.Ctx) error {
	id := models.CityID(c.Params("cityId"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: cityId",
		})
	}

	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	tokens, src := r.sessionTokens(sess)
	ctx := repositories.WithOrigin(c.Context(), c.BaseURL())

	token, err := tokens.Token(ctx)
	r.persistRefreshed(sess, src)
	if err != nil {
		r.dropRejectedToken(sess, src, err)
		return r.loadFailed(c, sess.ID(), err)
	}

	outcome, err := r.service.GetWeather(ctx, sess.ID(), id, token)
	if err != nil {
		if weather.Rejected(err) {
			r.l.Warning("failed to load city detail", map[string]any{"cityId": id.String(), "err": err.Error()})
		} else {
			r.l.Error(err, map[string]any{"cityId": id.String()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(models.Failure(id, err))
	}

	return c.JSON(outcome)
}

func (r *routes) loadFailed(c *fiber.Ctx, session string, err error) error {
	switch {
	case errors.Is(err, weather.ErrDiscarded):
		return c.SendStatus(statusClientClosedRequest)
	case errors.Is(err, auth.ErrAuthFailure):
		r.l.Warning("access token unavailable", map[string]any{"session": session, "err": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Authentication required",
		})
	case errors.Is(err, weather.ErrFetchFailure):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: err.Error(),
		})
	default:
		r.l.Error(err, map[string]any{"session": session})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to load weather data",
		})
	}
}
