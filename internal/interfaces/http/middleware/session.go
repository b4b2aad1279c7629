package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/session"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SessionKey is the gin context key holding the *SessionState
const SessionKey = "session"

// SessionOptions configure the session cookie
type SessionOptions struct {
	CookieName string
	Path       string
	Domain     string
	MaxAge     time.Duration
	Secure     bool
	SameSite   http.SameSite
}

// SessionOptionsFromConfig maps the session config section
func SessionOptionsFromConfig(cfg config.SessionConfig) SessionOptions {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.SameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return SessionOptions{
		CookieName: cfg.CookieName,
		Path:       cfg.Path,
		Domain:     cfg.Domain,
		MaxAge:     cfg.TTL,
		Secure:     cfg.Secure,
		SameSite:   sameSite,
	}
}

// SessionState is the session of the current request. New sessions get an
// ID and a cookie on their first Save.
type SessionState struct {
	ID   string
	Data *session.Data

	store session.Store
	opts  SessionOptions
}

// Session loads the session named by the cookie, or starts an empty one
func Session(store session.Store, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := &SessionState{Data: &session.Data{}, store: store, opts: opts}

		if id, err := c.Cookie(opts.CookieName); err == nil && id != "" {
			data, err := store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				state.ID, state.Data = id, data
			case errors.Is(err, session.ErrSessionNotFound):
				// expired, start over
			default:
				logger.GetGinLogger(c).Error("Failed to load session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal, "Session storage is unavailable", GetRequestID(c)))
				return
			}
		}

		c.Set(SessionKey, state)
		c.Next()
	}
}

// GetSession returns the state set by Session
func GetSession(c *gin.Context) *SessionState {
	if v, ok := c.Get(SessionKey); ok {
		if state, ok := v.(*SessionState); ok {
			return state
		}
	}
	return nil
}

// Save persists the session and refreshes the cookie. It must run before
// the response body is written.
func (s *SessionState) Save(ctx context.Context, c *gin.Context) error {
	if s.ID == "" {
		id, err := session.NewID()
		if err != nil {
			return err
		}
		s.ID = id
	}
	if err := s.store.Save(ctx, s.ID, s.Data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.SetSameSite(s.opts.SameSite)
	c.SetCookie(s.opts.CookieName, s.ID, int(s.opts.MaxAge.Seconds()), s.opts.Path, s.opts.Domain, s.opts.Secure, true)
	return nil
}
