// Package notice carries one-shot user messages across a redirect in a signed
// cookie. A notice is written by the request that redirects and consumed by
// the next GET that renders a page.
package notice

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"buzztub/internal/security"
)

const CookieName = "notice"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notices struct {
	secret string
	secure bool
}

func New(secret string, secure bool) *Notices {
	return &Notices{secret: secret, secure: secure}
}

// Set stores n for the next page the client loads.
func (n *Notices) Set(c *gin.Context, level Level, message string) {
	value, err := n.encode(Notice{Level: level, Message: message})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, 60, "/", "", n.secure, true)
}

// Pop returns the pending notice, if any, and clears it. Tampered or
// malformed cookies are dropped silently.
func (n *Notices) Pop(c *gin.Context) *Notice {
	value, err := c.Cookie(CookieName)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", n.secure, true)

	decoded, ok := n.decode(value)
	if !ok {
		return nil
	}
	return &decoded
}

func (n *Notices) encode(notice Notice) (string, error) {
	raw, err := json.Marshal(notice)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + string(security.SignResource(n.secret, CookieName, payload)), nil
}

func (n *Notices) decode(value string) (Notice, bool) {
	payload, sig, found := strings.Cut(value, ".")
	if !found || !security.VerifyResource(n.secret, []byte(sig), CookieName, payload) {
		return Notice{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(raw, &notice); err != nil {
		return Notice{}, false
	}
	return notice, true
}
