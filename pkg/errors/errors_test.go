package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, errors.Unwrap(err), "boom")
}

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNotFound, "appointment not found"))
	err := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, "appointment not found", err.Message)
}

func TestCloneMatchesOriginalWithIs(t *testing.T) {
	clone := Clone(ErrValidation, "bad date")
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.False(t, errors.Is(clone, ErrNotFound))
	assert.Equal(t, "validation failed", ErrValidation.Message, "original untouched")
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrValidation, map[string]any{"field": "date"})
	assert.Equal(t, "date", err.Details["field"])
	assert.Nil(t, ErrValidation.Details)
}
