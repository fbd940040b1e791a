package http

import (
	"github.com/gofiber/fiber/v2"

	"weather-dashboard/internal/auth"
)

type MeResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated" example:"true"`
	Email           string `json:"email,omitempty" example:"user@example.com"`
}

// GetMe godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} MeResponse "Successful response"
// @Router /auth/me [get]
func (r *routes) handleMe(c *fiber.Ctx) error {
	if r.authn == nil {
		_, anonymous := r.tokens.(auth.Anonymous)
		return c.JSON(MeResponse{IsAuthenticated: !anonymous})
	}

	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	token, _ := sess.Get(sessionToken).(string)
	email, _ := sess.Get(sessionEmail).(string)

	return c.JSON(MeResponse{
		IsAuthenticated: token != "",
		Email:           email,
	})
}

// Login godoc
// @Summary Redirect to the identity provider
// @Tags Auth
// @Success 302 "Redirect"
// @Failure 404 {object} ErrorResponse "Login is not enabled"
// @Router /auth/login [get]
func (r *routes) handleLogin(c *fiber.Ctx) error {
	if r.authn == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Login is not enabled",
		})
	}

	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}

	state, nonce := auth.NewState(), auth.NewState()
	sess.Set(sessionState, state)
	sess.Set(sessionNonce, nonce)
	r.saveSession(sess)

	return c.Redirect(r.authn.LoginURL(state, nonce), fiber.StatusFound)
}

// Callback godoc
// @Summary Identity provider callback
// @Tags Auth
// @Param code query string false "Authorization code"
// @Param state query string false "Login state"
// @Success 302 "Redirect"
// @Failure 400 {object} ErrorResponse "Invalid state"
// @Failure 401 {object} ErrorResponse "Exchange failed"
// @Router /auth/callback [get]
func (r *routes) handleCallback(c *fiber.Ctx) error {
	if r.authn == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Login is not enabled",
		})
	}

	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	if errParam := c.Query("error"); errParam != "" {
		r.l.Warning("identity provider returned an error", map[string]any{
			"error":       errParam,
			"description": c.Query("error_description"),
		})
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Login failed: " + errParam,
		})
	}

	state, _ := sess.Get(sessionState).(string)
	nonce, _ := sess.Get(sessionNonce).(string)
	sess.Delete(sessionState)
	sess.Delete(sessionNonce)

	if state == "" || c.Query("state") != state {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid login state",
		})
	}

	tok, profile, err := r.authn.Exchange(c.UserContext(), c.Query("code"), nonce)
	if err != nil {
		r.l.Warning("login exchange failed", map[string]any{"err": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Authentication failed",
		})
	}

	encoded, err := auth.EncodeToken(tok)
	if err != nil {
		r.l.Error(err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to store session",
		})
	}

	sess.Set(sessionToken, encoded)
	sess.Set(sessionEmail, profile.Email)

	r.l.Info("user logged in", map[string]any{"session": sess.ID(), "subject": profile.Subject})

	return c.Redirect("/", fiber.StatusFound)
}

// Logout godoc
// @Summary End the session
// @Description Drops the session and its cached snapshots, then ends the identity provider session.
// @Tags Auth
// @Success 302 "Redirect"
// @Router /auth/logout [get]
func (r *routes) handleLogout(c *fiber.Ctx) error {
	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}

	if _, err := r.service.Cache(sess.ID()).Clear(c.UserContext()); err != nil {
		r.l.Warning("failed to clear session cache", map[string]any{"session": sess.ID(), "err": err.Error()})
	}

	if err := sess.Destroy(); err != nil {
		r.l.Error(err, map[string]any{"session": sess.ID()})
	}

	if r.authn == nil {
		return c.Redirect("/", fiber.StatusFound)
	}

	returnTo := r.publicURL
	if returnTo == "" {
		returnTo = c.BaseURL()
	}

	return c.Redirect(r.authn.LogoutURL(returnTo), fiber.StatusFound)
}
