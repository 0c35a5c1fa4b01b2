package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				event := log.Error().
					Interface("error", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", requestIDFrom(c))
				if session, ok := CurrentSession(c); ok {
					event = event.Str("username", session.Username)
				}
				event.Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Something went wrong. Please try again.",
				})
			}
		}()
		c.Next()
	}
}
