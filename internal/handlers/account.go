package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"buzztub/internal/notice"
	"buzztub/internal/service"
)

func (h HandlerSet) OwnProfile(c *gin.Context) {
	session := h.session(c)
	h.profile(c, session.Username)
}

func (h HandlerSet) UserProfile(c *gin.Context) {
	h.profile(c, c.Param("username"))
}

func (h HandlerSet) profile(c *gin.Context, username string) {
	profile, err := h.content.Profile(c.Request.Context(), h.session(c), username)
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "profile", gin.H{"profile": profile})
}

func (h HandlerSet) SettingsPage(c *gin.Context) {
	user, err := h.auth.Account(c.Request.Context(), h.session(c))
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "settings", gin.H{"account": user})
}

type settingsRequest struct {
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password"`
}

func (h HandlerSet) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, "/settings", notice.LevelWarning, "Invalid form submission.")
		return
	}

	input := service.SettingsInput{CurrentPassword: req.CurrentPassword, NewPassword: req.NewPassword}
	// An absent email field leaves the address alone; an empty one clears it.
	if email, ok := c.GetPostForm("email"); ok {
		input.Email = &email
	}

	if err := h.auth.UpdateSettings(c.Request.Context(), h.session(c), input); err != nil {
		h.fail(c, err, "/settings")
		return
	}
	h.redirect(c, "/settings", notice.LevelSuccess, "Settings saved.")
}

func (h HandlerSet) ReportUser(c *gin.Context) {
	reported := c.Param("username")
	if _, err := h.community.Report(c.Request.Context(), h.session(c), reported, c.PostForm("reason")); err != nil {
		h.fail(c, err, userPath(reported))
		return
	}
	h.redirect(c, userPath(reported), notice.LevelSuccess, "Report submitted. An admin will review it.")
}

func (h HandlerSet) PremiumPage(c *gin.Context) {
	session := h.session(c)
	status, err := h.community.PremiumStatus(c.Request.Context(), session)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	remaining := service.TrialRemaining(session, h.cfg.Security.TrialWindow, time.Now())
	h.render(c, "premium", gin.H{
		"status":                status,
		"sessionRole":           session.Role,
		"trialRemainingSeconds": int(remaining.Seconds()),
	})
}

func (h HandlerSet) RequestPremium(c *gin.Context) {
	if _, err := h.community.RequestPremium(c.Request.Context(), h.session(c)); err != nil {
		h.fail(c, err, "/premium")
		return
	}
	h.redirect(c, "/premium", notice.LevelSuccess, "Premium request sent. An admin will review it.")
}
