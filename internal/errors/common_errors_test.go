package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "source access error type", errType: ErrTypeSourceAccess, expected: "SOURCE_ACCESS"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "schema error type", errType: ErrTypeSchema, expected: "SCHEMA"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeSchema,
				Message: "required column missing",
			},
			wantMessage: "[SCHEMA] required column missing",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeSourceAccess,
				Message: "open transaction extract",
				Cause:   fmt.Errorf("no such file"),
			},
			wantMessage: "[SOURCE_ACCESS] open transaction extract: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewSourceAccessError("open transaction extract", os.ErrNotExist)

	assert.True(t, errors.Is(err, os.ErrNotExist))

	var appErr *AppError
	wrapped := fmt.Errorf("load step: %w", err)
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeSourceAccess, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := (&AppError{Type: ErrTypeStorage, Message: "write"}).
		WithContext("path", "out.png").
		WithContext("attempt", 2)

	assert.Equal(t, "out.png", err.Context["path"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestHelperConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       *AppError
		wantType  ErrorType
		retryable bool
	}{
		{name: "source access", err: NewSourceAccessError("m", cause), wantType: ErrTypeSourceAccess, retryable: true},
		{name: "parsing", err: NewParsingError("m", cause), wantType: ErrTypeParsing},
		{name: "schema", err: NewSchemaError("m", cause), wantType: ErrTypeSchema},
		{name: "render", err: NewRenderError("m", cause), wantType: ErrTypeRender},
		{name: "storage", err: NewStorageError("m", cause), wantType: ErrTypeStorage},
		{name: "validation", err: NewAppValidationError("m"), wantType: ErrTypeValidation},
		{name: "not found", err: NewNotFoundError("Performance.xlsx"), wantType: ErrTypeNotFound},
		{name: "config", err: NewConfigError("m", cause), wantType: ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.True(t, IsType(tt.err, tt.wantType))
		})
	}
}

func TestIsType_WalksChain(t *testing.T) {
	inner := NewSourceAccessError("read sheet", errors.New("zip: not a valid zip file"))
	outer := NewParsingError("performance workbook", inner)

	assert.True(t, IsType(outer, ErrTypeParsing))
	assert.True(t, IsType(outer, ErrTypeSourceAccess))
	assert.False(t, IsType(outer, ErrTypeRender))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}

func TestIsRetryable_PlainErrors(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", NewSourceAccessError("m", nil))))
}
