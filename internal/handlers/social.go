package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"buzztub/internal/notice"
	"buzztub/internal/service"
)

// Follow toggles a subscription. The optional video_id form field records
// the video page it was made from and is where the user is sent back to.
func (h HandlerSet) Follow(c *gin.Context) {
	followee := c.Param("username")
	back := userPath(followee)

	var source *int64
	if raw := strings.TrimSpace(c.PostForm("video_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.fail(c, errBadID, back)
			return
		}
		source = &id
		back = videoPath(id)
	}

	following, err := h.content.ToggleFollow(c.Request.Context(), h.session(c), followee, source)
	if err != nil {
		h.fail(c, err, back)
		return
	}

	message := "Unsubscribed from " + followee + "."
	if following {
		message = "Subscribed to " + followee + "."
	}
	h.redirect(c, back, notice.LevelSuccess, message)
}

func (h HandlerSet) ChatPage(c *gin.Context) {
	messages, err := h.chat.Recent(c.Request.Context())
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "publichat", gin.H{"messages": messages})
}

func (h HandlerSet) PostChat(c *gin.Context) {
	var attachment *service.Attachment
	file, header, err := c.Request.FormFile("attachment")
	if err == nil {
		defer file.Close()
		attachment = &service.Attachment{Filename: header.Filename, Size: header.Size, Body: file}
	}

	if _, err := h.chat.Post(c.Request.Context(), h.session(c), c.PostForm("text"), attachment); err != nil {
		h.fail(c, err, "/publichat")
		return
	}
	h.redirect(c, "/publichat", notice.LevelSuccess, "")
}

func userPath(username string) string {
	return "/user/" + url.PathEscape(username)
}
