package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	assert.Equal(t, "[TEMPLATE_NOT_FOUND] missing", New(CodeTemplateNotFound, "missing").Error())
	assert.Equal(t, "[INTERNAL_ERROR] boom: cause",
		Wrap(fmt.Errorf("cause"), CodeInternal, "boom").Error())
	assert.Equal(t, "[TIMEOUT_ERROR] waited 3s", Newf(CodeTimeout, "waited %ds", 3).Error())
}

func TestWrapKeepsInnermostCode(t *testing.T) {
	inner := New(CodeSourceAuthError, "unauthorized")
	outer := Wrap(fmt.Errorf("export: %w", inner), CodeSourceAPIError, "export failed")

	assert.Same(t, inner, outer)
	assert.Equal(t, CodeSourceAuthError, GetCode(outer))
	assert.Nil(t, Wrap(nil, CodeInternal, "x"))
}

func TestWrapUserFacing(t *testing.T) {
	inner := New(CodeTemplateReadError, "permission denied")
	wrapped := WrapUserFacing(inner, CodeConfigValidation, "cannot read templates", "Check paths.")

	assert.Equal(t, CodeConfigValidation, GetCode(wrapped))
	assert.Equal(t, inner.Error(), wrapped.InternalDetails)
	assert.Equal(t, inner.StackTrace, wrapped.StackTrace)
	assert.True(t, stderrs.Is(wrapped, inner))
	assert.Nil(t, WrapUserFacing(nil, CodeInternal, "x", "y"))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))
	assert.True(t, Is(fmt.Errorf("ctx: %w", New(CodeThrottled, "slow down")), CodeThrottled))
	assert.False(t, Is(New(CodeThrottled, "slow down"), CodeTimeout))
}

func TestGetUserFacingMessage(t *testing.T) {
	msg, suggestion, ok := GetUserFacingMessage(fmt.Errorf("outer: %w",
		NewUserFacing(CodeConfigValidation, "bucket is required", "Set store.s3.bucket.")))
	assert.True(t, ok)
	assert.Equal(t, "bucket is required", msg)
	assert.Equal(t, "Set store.s3.bucket.", suggestion)

	msg, suggestion, ok = GetUserFacingMessage(New(CodeInternal, "hidden"))
	assert.False(t, ok)
	assert.Equal(t, "An unexpected error occurred.", msg)
	assert.Equal(t, "Check logs for more details.", suggestion)
}
