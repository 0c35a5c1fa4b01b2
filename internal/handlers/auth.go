package handlers

import (
	"github.com/gin-gonic/gin"

	"buzztub/internal/middleware"
	"buzztub/internal/notice"
	"buzztub/internal/service"
)

type signupRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Email    string `form:"email"`
}

func (h HandlerSet) SignupPage(c *gin.Context) {
	h.render(c, "signup", gin.H{"fields": []string{"username", "password", "email"}})
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, "/signup", notice.LevelWarning, "Invalid form submission.")
		return
	}

	_, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(c, err, "/signup")
		return
	}

	h.redirect(c, "/login", notice.LevelSuccess, "Account created. Please log in.")
}

type loginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h HandlerSet) LoginPage(c *gin.Context) {
	h.render(c, "login", gin.H{"fields": []string{"username", "password"}})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, "/login", notice.LevelWarning, "Invalid form submission.")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if h.metrics != nil {
		h.metrics.Login(err == nil)
	}
	if err != nil {
		h.fail(c, err, "/login")
		return
	}

	middleware.SetSessionCookie(c, result.Token, h.cfg.Security.SessionTTL, h.cfg.Security.CookieSecure)
	h.redirect(c, "/", notice.LevelSuccess, "Welcome back, "+result.Session.Username+".")
}

// Logout is not guarded: a stale or missing cookie still ends on the login
// page with the cookie cleared.
func (h HandlerSet) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	if token != "" {
		if session, err := h.auth.Authenticate(c.Request.Context(), token); err == nil {
			if err := h.auth.Logout(c.Request.Context(), session); err != nil {
				h.log.Warn().Err(err).Str("username", session.Username).Msg("logout failed")
			}
		}
	}

	middleware.ClearSessionCookie(c, h.cfg.Security.CookieSecure)
	h.redirect(c, "/login", notice.LevelInfo, "You have been logged out.")
}
