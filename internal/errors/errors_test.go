package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewSchemaError("unrecognized enrollment schema")
	assert.Equal(t, "[SCHEMA] unrecognized enrollment schema", err.Error())

	wrapped := NewStorageError("failed to write cache entry", errors.New("disk full"))
	assert.Equal(t, "[STORAGE] failed to write cache entry: disk full", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("all mirrors failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsType(t *testing.T) {
	err := NewValidationError("end year out of range")
	assert.True(t, IsType(err, ErrTypeValidation))
	assert.False(t, IsType(err, ErrTypeSchema))

	// Type detection survives fmt wrapping.
	wrapped := fmt.Errorf("end year 2003: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeValidation))

	assert.False(t, IsType(errors.New("plain"), ErrTypeValidation))
	assert.False(t, IsType(nil, ErrTypeValidation))
}

func TestWithContext(t *testing.T) {
	err := NewParsingError("failed to read CSV export", nil).
		WithContext("url", "https://example.org/export.csv").
		WithContext("end_year", 2019)

	require.NotNil(t, err.Context)
	assert.Equal(t, "https://example.org/export.csv", err.Context["url"])
	assert.Equal(t, 2019, err.Context["end_year"])
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("https://example.org/cohort_2006.csv")
	assert.True(t, IsType(err, ErrTypeNotFound))
	assert.Contains(t, err.Error(), "not found")
}
