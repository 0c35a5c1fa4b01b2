package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_StripsScripting(t *testing.T) {
	in := []byte(`<svg onload="alert(1)"><script>alert(2)</script><a href="javascript:alert(3)">x</a>` +
		`<foreignObject><div>hi</div></foreignObject><circle r='4' onclick='x()'/></svg>`)

	out, err := Sanitize(in)
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "alert")
	assert.NotContains(t, s, "onclick")
	assert.NotContains(t, s, "foreignObject")
	assert.Contains(t, s, "<circle r='4'/>")
}

func TestSanitize_RejectsNonSVG(t *testing.T) {
	_, err := Sanitize([]byte("<html></html>"))
	assert.ErrorIs(t, err, ErrNotSVG)
}
