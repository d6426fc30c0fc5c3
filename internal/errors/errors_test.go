package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		category   ErrorCategory
		httpStatus int
		prefix     string
	}{
		{"validation", NewValidationError("empty table", nil), CategoryValidation, 400, "[VALIDATION_ERROR] empty table"},
		{"configuration", NewConfigurationError("bad config", nil), CategoryConfiguration, 500, "[CONFIGURATION_ERROR] bad config"},
		{"input", NewInputError("a.json", "malformed record package", nil), CategoryInput, 422, "[INPUT_ERROR] malformed record package"},
		{"not found", NewNotFoundError("lens x"), CategoryNotFound, 404, "[NOT_FOUND] lens x not found"},
		{"rate limit", NewRateLimitError("60"), CategoryRateLimit, 429, "[RATE_LIMIT_EXCEEDED] Rate limit exceeded"},
		{"unauthorized", NewUnauthorizedError("missing bearer token"), CategoryUnauthorized, 401, "[UNAUTHORIZED] missing bearer token"},
		{"internal", NewInternalError("boom", nil), CategoryInternal, 500, "[INTERNAL_ERROR] boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.Equal(t, tt.prefix, tt.err.Error())
			assert.True(t, IsCategory(tt.err, tt.category))
		})
	}
}

func TestAppErrorCause(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := NewInputError("b.json", "malformed record package", cause)

	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.ErrorIs(t, err, cause)
}

func TestToAppError(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewConfigurationError("bad", nil)
	wrapped := WrapError(original, "loading %s", "charts.yaml")
	assert.Same(t, original, ToAppError(wrapped))
	assert.True(t, IsCategory(wrapped, CategoryConfiguration))

	plain := ToAppError(fmt.Errorf("disk full"))
	assert.Equal(t, CategoryInternal, plain.Category)

	cancelled := ToAppError(context.Canceled)
	assert.Equal(t, CategoryInternal, cancelled.Category)
	assert.ErrorIs(t, cancelled, context.Canceled)
}

func TestWrapErrorNil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "anything"))
}
