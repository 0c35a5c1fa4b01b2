package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"buzztub/internal/notice"
	"buzztub/internal/service"
)

func (h HandlerSet) Home(c *gin.Context) {
	videos, err := h.content.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err, "/login")
		return
	}

	session := h.session(c)
	remaining := service.TrialRemaining(session, h.cfg.Security.TrialWindow, time.Now())
	h.render(c, "home", gin.H{
		"videos":                videos,
		"trialRemainingSeconds": int(remaining.Seconds()),
	})
}

func (h HandlerSet) VideoPage(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	page, err := h.content.VideoPage(c.Request.Context(), h.session(c), id)
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "video", gin.H{"video": page})
}

func (h HandlerSet) Upload(c *gin.Context) {
	input := service.UploadInput{Title: c.PostForm("title")}

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		input.Filename = header.Filename
		input.Size = header.Size
		input.Body = file
	}

	video, err := h.content.Upload(c.Request.Context(), h.session(c), input)
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.redirect(c, videoPath(video.ID), notice.LevelSuccess, "Video uploaded.")
}

func (h HandlerSet) Like(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	result, err := h.content.ToggleLike(c.Request.Context(), h.session(c), id)
	if err != nil {
		h.fail(c, err, videoPath(id))
		return
	}

	message := "Like removed."
	if result.Liked {
		message = "Video liked."
	}
	h.redirect(c, videoPath(id), notice.LevelSuccess, message)
}

func (h HandlerSet) Comment(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	if _, err := h.content.Comment(c.Request.Context(), h.session(c), id, c.PostForm("text")); err != nil {
		h.fail(c, err, videoPath(id))
		return
	}
	h.redirect(c, videoPath(id), notice.LevelSuccess, "Comment posted.")
}

func (h HandlerSet) Leaderboard(c *gin.Context) {
	videos, err := h.content.Leaderboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "/")
		return
	}
	h.render(c, "leaderboard", gin.H{"videos": videos})
}

func videoPath(id int64) string {
	return "/video/" + strconv.FormatInt(id, 10)
}
