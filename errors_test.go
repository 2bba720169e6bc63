package girder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := errMissingBinding("app.Config", errors.New("not registered"))
	assert.Equal(t, `[MISSING_BINDING] key="app.Config": no binding for app.Config: not registered`, err.Error())

	plain := errStateInvalid("build is final-graph-built, expected modules-collected")
	assert.Equal(t, "[STATE_INVALID] build is final-graph-built, expected modules-collected", plain.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := errProvisionFailed("k", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	a := errDuplicateBinding("x", nil)
	b := errDuplicateBinding("y", nil)
	c := errMissingBinding("x", nil)

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestError_Predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsMarkerConflict(errMarkerConflict("m", "[suite module]")))
	assert.True(t, IsAutoBindInvalid(errAutoBindInvalid("k", "bad")))
	assert.True(t, IsDuplicateBinding(errDuplicateBinding("k", nil)))
	assert.True(t, IsMissingBinding(errMissingBinding("k", nil)))
	assert.True(t, IsCircularDependency(errCircularDependency("k", nil)))
	assert.True(t, IsProvisionFailed(errProvisionFailed("k", nil)))
	assert.True(t, IsModuleFailed(errModuleFailed("m", nil)))
	assert.True(t, IsActionFailed(errActionFailed(0, nil)))
	assert.True(t, IsLifecycleFailed(errLifecycleFailed("k", nil)))
	assert.True(t, IsSettingsInvalid(errSettingsInvalid("bad", nil)))

	assert.False(t, IsMissingBinding(errDuplicateBinding("k", nil)))
	assert.False(t, IsMissingBinding(errors.New("plain")))
	assert.False(t, IsMissingBinding(nil))
}

func TestError_PredicatesSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("outer: %w", errMissingBinding("k", nil))
	assert.True(t, IsMissingBinding(wrapped))
}

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MISSING_BINDING", ErrCodeMissingBinding.String())
	assert.Equal(t, "MARKER_CONFLICT", ErrCodeMarkerConflict.String())
	assert.Equal(t, "UNKNOWN(999)", ErrorCode(999).String())
}
