package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"weather-dashboard/internal/auth"
)

const (
	sessionToken = "token"
	sessionEmail = "email"
	sessionState = "oauth_state"
	sessionNonce = "oauth_nonce"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Failed to load cities"`
}

// sessionTokens picks the token provider of the request. With browser login
// the token lives in the session and is refreshed silently; without a stored
// token the request is anonymous.
func (r *routes) sessionTokens(sess *session.Session) (auth.TokenProvider, *auth.SourceProvider) {
	if r.authn == nil {
		return r.tokens, nil
	}

	raw, _ := sess.Get(sessionToken).(string)
	if raw == "" {
		return auth.Anonymous{}, nil
	}

	tok, err := auth.DecodeToken(raw)
	if err != nil {
		r.l.Warning("dropping unreadable session token", map[string]any{"session": sess.ID(), "err": err.Error()})
		sess.Delete(sessionToken)
		return auth.Anonymous{}, nil
	}

	src := r.authn.Session(tok)
	return src, src
}

// persistRefreshed stores the token again when the provider refreshed it.
func (r *routes) persistRefreshed(sess *session.Session, src *auth.SourceProvider) {
	if src == nil || src.Current() == nil {
		return
	}

	encoded, err := auth.EncodeToken(src.Current())
	if err != nil {
		r.l.Error(err, map[string]any{"session": sess.ID()})
		return
	}
	if stored, _ := sess.Get(sessionToken).(string); stored != encoded {
		sess.Set(sessionToken, encoded)
	}
}

// dropRejectedToken forgets a session token that can no longer be refreshed,
// so the browser falls back to the login state.
func (r *routes) dropRejectedToken(sess *session.Session, src *auth.SourceProvider, err error) {
	if src != nil && errors.Is(err, auth.ErrAuthFailure) {
		sess.Delete(sessionToken)
		sess.Delete(sessionEmail)
	}
}

func (r *routes) sessionFailed(c *fiber.Ctx, err error) error {
	r.l.Error(err, map[string]any{"path": c.Path()})
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Failed to load session",
	})
}

// saveSession writes the session and its cookie. The session must not be
// used afterwards.
func (r *routes) saveSession(sess *session.Session) {
	id := sess.ID()
	if err := sess.Save(); err != nil {
		r.l.Error(err, map[string]any{"session": id})
	}
}
