package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "Upload failed.")

	assert.Equal(t, "internal: Upload failed.: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAs_FindsWrappedError(t *testing.T) {
	err := fmt.Errorf("like video: %w", Validation("You cannot like your own video."))

	appErr := As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "You cannot like your own video.", appErr.Message)
}

func TestAs_UnknownErrorBecomesInternal(t *testing.T) {
	appErr := As(errors.New("boom"))

	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.NotContains(t, appErr.Message, "boom")
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("Video"), KindNotFound))
	assert.False(t, Is(Conflict("taken"), KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
	assert.Equal(t, "Video not found.", NotFound("Video").Message)
}
