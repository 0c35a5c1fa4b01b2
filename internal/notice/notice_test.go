package notice

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSetThenPop(t *testing.T) {
	n := New("secret", false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/like/1", nil)
	n.Set(c, LevelWarning, "Access denied.")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])

	got := n.Pop(c2)
	require.NotNil(t, got)
	assert.Equal(t, Notice{Level: LevelWarning, Message: "Access denied."}, *got)

	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestPop_RejectsTampering(t *testing.T) {
	n := New("secret", false)
	value, err := n.encode(Notice{Level: LevelInfo, Message: "hello"})
	require.NoError(t, err)

	forged, err := New("other", false).encode(Notice{Level: LevelInfo, Message: "hello"})
	require.NoError(t, err)

	for _, v := range []string{forged, value + "x", "garbage", ""} {
		_, ok := n.decode(v)
		assert.False(t, ok, v)
	}
	_, ok := n.decode(value)
	assert.True(t, ok)
}

func TestPop_NoCookie(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, New("secret", false).Pop(c))
}
