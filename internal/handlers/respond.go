package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"buzztub/internal/apperr"
	"buzztub/internal/middleware"
	"buzztub/internal/models"
	"buzztub/internal/notice"
)

var errBadID = apperr.Validation("Invalid id.")

// render writes a page view-model, consuming any pending notice.
func (h HandlerSet) render(c *gin.Context, page string, data gin.H) {
	body := gin.H{"page": page, "data": data}
	if n := h.notices.Pop(c); n != nil {
		body["notice"] = n
	}
	if session, ok := middleware.CurrentSession(c); ok {
		body["session"] = session
	}
	c.JSON(http.StatusOK, body)
}

// redirect finishes a mutation: the message is shown on the next page.
func (h HandlerSet) redirect(c *gin.Context, location string, level notice.Level, message string) {
	if message != "" {
		h.notices.Set(c, level, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// fail converts an error into a redirect with a notice. Credential and
// session errors go to the login page; everything else goes to fallback.
func (h HandlerSet) fail(c *gin.Context, err error, fallback string) {
	appErr := apperr.As(err)
	location := fallback
	level := notice.LevelError

	switch appErr.Kind {
	case apperr.KindAuthorization:
		location = "/login"
		level = notice.LevelWarning
	case apperr.KindValidation, apperr.KindConflict, apperr.KindNotFound:
		level = notice.LevelWarning
	case apperr.KindInternal:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	h.redirect(c, location, level, appErr.Message)
}

func (h HandlerSet) session(c *gin.Context) models.Session {
	session, _ := middleware.CurrentSession(c)
	return session
}

func paramID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
