package handlers

import (
	"github.com/gin-gonic/gin"

	"buzztub/internal/middleware"
	"buzztub/internal/notice"
)

const adminPath = "/admin"

func (h HandlerSet) AdminDashboard(c *gin.Context) {
	dashboard, err := h.moderation.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "admin", gin.H{"dashboard": dashboard})
}

func (h HandlerSet) AdminDeleteVideo(c *gin.Context) {
	h.moderate(c, "Video deleted.", func(id int64) error {
		return h.moderation.DeleteVideo(c.Request.Context(), h.session(c), id)
	})
}

func (h HandlerSet) AdminDeleteComment(c *gin.Context) {
	h.moderate(c, "Comment deleted.", func(id int64) error {
		return h.moderation.DeleteComment(c.Request.Context(), h.session(c), id)
	})
}

func (h HandlerSet) AdminDeleteMessage(c *gin.Context) {
	h.moderate(c, "Message deleted.", func(id int64) error {
		return h.moderation.DeleteMessage(c.Request.Context(), h.session(c), id)
	})
}

func (h HandlerSet) AdminGrantPremium(c *gin.Context) {
	h.moderate(c, "Premium granted.", func(id int64) error {
		_, err := h.moderation.GrantPremium(c.Request.Context(), h.session(c), id)
		return err
	})
}

func (h HandlerSet) AdminRejectPremium(c *gin.Context) {
	h.moderate(c, "Premium request rejected.", func(id int64) error {
		return h.moderation.RejectPremium(c.Request.Context(), h.session(c), id)
	})
}

func (h HandlerSet) AdminMarkReportReviewed(c *gin.Context) {
	h.moderate(c, "Report marked as reviewed.", func(id int64) error {
		return h.moderation.MarkReportReviewed(c.Request.Context(), h.session(c), id)
	})
}

// AdminKickUser removes a user. An admin who removes their own account loses
// the session cookie and lands on the login page.
func (h HandlerSet) AdminKickUser(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.fail(c, err, adminPath)
		return
	}

	result, err := h.moderation.KickUser(c.Request.Context(), h.session(c), id)
	if err != nil {
		h.fail(c, err, adminPath)
		return
	}

	if result.Self {
		middleware.ClearSessionCookie(c, h.cfg.Security.CookieSecure)
		h.redirect(c, "/login", notice.LevelInfo, "Your account was removed.")
		return
	}
	h.redirect(c, adminPath, notice.LevelSuccess, "User "+result.Username+" removed.")
}

func (h HandlerSet) moderate(c *gin.Context, success string, action func(id int64) error) {
	id, err := paramID(c)
	if err != nil {
		h.fail(c, err, adminPath)
		return
	}
	if err := action(id); err != nil {
		h.fail(c, err, adminPath)
		return
	}
	h.redirect(c, adminPath, notice.LevelSuccess, success)
}
