package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"buzztub/internal/metrics"
	"buzztub/internal/models"
	"buzztub/internal/notice"
	"buzztub/internal/service"
)

const (
	SessionCookie = "buzztub_session"
	sessionKey    = "session"
)

// Authenticator resolves the session cookie and evicts sessions whose trial
// ran out.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Session, error)
	Expire(ctx context.Context, session models.Session) error
}

type Guard struct {
	auth         Authenticator
	notices      *notice.Notices
	metrics      *metrics.Metrics
	log          zerolog.Logger
	trialWindow  time.Duration
	cookieSecure bool
	now          func() time.Time
}

func NewGuard(auth Authenticator, notices *notice.Notices, m *metrics.Metrics, log zerolog.Logger, trialWindow time.Duration, cookieSecure bool) *Guard {
	return &Guard{
		auth:         auth,
		notices:      notices,
		metrics:      m,
		log:          log,
		trialWindow:  trialWindow,
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}

// WithClock replaces the clock used by the expiry gate.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// RequireSession is the liveness gate. Requests without a live session are
// sent to the login page; on success the session is stored on the context.
func (g *Guard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)
		session, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNotLoggedIn) {
				g.log.Error().Err(err).Msg("session lookup failed")
			}
			if token != "" {
				ClearSessionCookie(c, g.cookieSecure)
			}
			g.deny(c, metrics.DenyNoSession, "/login", notice.LevelWarning, service.ErrNotLoggedIn.Message)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireActive is the trial expiry gate. It must run after RequireSession.
// An expired free session is destroyed before the request is denied, so the
// denial is final until the user logs in again.
func (g *Guard) RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			g.deny(c, metrics.DenyNoSession, "/login", notice.LevelWarning, service.ErrNotLoggedIn.Message)
			return
		}

		if service.TrialExpired(session, g.trialWindow, g.now()) {
			if err := g.auth.Expire(c.Request.Context(), session); err != nil {
				g.log.Error().Err(err).Str("username", session.Username).Msg("expire session failed")
			}
			ClearSessionCookie(c, g.cookieSecure)
			g.deny(c, metrics.DenyExpired, "/login", notice.LevelWarning, service.ErrSessionExpired.Message)
			return
		}

		c.Next()
	}
}

// RequireAdmin is the admin gate. It must run after RequireSession and does
// not depend on the expiry gate.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return RequireRoles(func(c *gin.Context) {
		g.deny(c, metrics.DenyNotAdmin, "/", notice.LevelError, "Access denied.")
	}, models.RoleAdmin)
}

func (g *Guard) deny(c *gin.Context, reason, location string, level notice.Level, message string) {
	if g.metrics != nil {
		g.metrics.GuardDenied(reason)
	}
	g.notices.Set(c, level, message)
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

// CurrentSession returns the identity the guard attached to the request.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(sessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := val.(models.Session)
	return session, ok
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
