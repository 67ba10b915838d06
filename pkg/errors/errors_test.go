package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewError tests the basic creation of errors.
func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "ValidationFailed",
			code:    ValidationFailed,
			message: "validation failed",
		},
		{
			name:    "NoStrategy",
			code:    NoStrategy,
			message: "no synthesis strategy for failure code",
		},
		{
			name:    "MissingContext",
			code:    MissingContext,
			message: "feedback context lacks item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			customErr, ok := err.(*Error)

			assert.True(t, ok, "should be a custom *Error")
			assert.Equal(t, tt.code, customErr.Code())
			assert.Equal(t, tt.message, customErr.Error())
			assert.Nil(t, customErr.Unwrap())
		})
	}
}

// TestWrapError tests error wrapping functionality.
func TestWrapError(t *testing.T) {
	originalErr := stderrors.New("original error")

	tests := []struct {
		name       string
		err        error
		code       ErrorCode
		wrapMsg    string
		expectNil  bool
		expectCode ErrorCode
	}{
		{
			name:       "Wrap normal error",
			err:        originalErr,
			code:       StorageFailed,
			wrapMsg:    "archive insert",
			expectNil:  false,
			expectCode: StorageFailed,
		},
		{
			name:      "Wrap nil error",
			err:       nil,
			code:      StorageFailed,
			wrapMsg:   "archive insert",
			expectNil: true,
		},
		{
			name:       "Wrap custom error",
			err:        New(ResourceNotFound, "not found"),
			code:       ValidationFailed,
			wrapMsg:    "validation context",
			expectNil:  false,
			expectCode: ValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.code, tt.wrapMsg)

			if tt.expectNil {
				assert.Nil(t, wrapped)
				return
			}

			assert.NotNil(t, wrapped)

			ourErr := wrapped.(*Error)
			assert.Equal(t, tt.expectCode, ourErr.Code())
			assert.Contains(t, ourErr.Error(), tt.wrapMsg)

			unwrapped := ourErr.Unwrap()
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), unwrapped.Error())
			}
		})
	}
}

// TestErrorInterfaces tests compliance with Go error interfaces.
func TestErrorInterfaces(t *testing.T) {
	t.Run("errors.Is support", func(t *testing.T) {
		err1 := New(NoStrategy, "first")
		err2 := New(NoStrategy, "second")
		err3 := New(MissingContext, "third")

		assert.True(t, stderrors.Is(err1, err2),
			"Errors with same code should match with Is")
		assert.False(t, stderrors.Is(err1, err3),
			"Errors with different codes should not match with Is")
	})

	t.Run("errors.As support", func(t *testing.T) {
		originalErr := New(ValidationFailed, "original")
		wrappedErr := Wrap(originalErr, ResourceNotFound, "wrapped")

		var customErr *Error
		assert.True(t, stderrors.As(wrappedErr, &customErr))
		assert.Equal(t, ResourceNotFound, customErr.Code())
	})

	t.Run("error unwrapping", func(t *testing.T) {
		baseErr := stderrors.New("base error")
		wrapped := Wrap(baseErr, ValidationFailed, "wrapped error")

		unwrapped := stderrors.Unwrap(wrapped)
		assert.Equal(t, baseErr.Error(), unwrapped.Error())
	})
}

// TestErrorString tests the string representation of errors.
func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "Simple error",
			err:      New(ValidationFailed, "validation failed"),
			contains: []string{"validation failed"},
		},
		{
			name: "Wrapped error",
			err: Wrap(
				stderrors.New("original problem"),
				ValidationFailed,
				"validation context",
			),
			contains: []string{
				"validation context",
				"original problem",
			},
		},
		{
			name: "Multiple wraps",
			err: Wrap(
				Wrap(
					stderrors.New("root cause"),
					ResourceNotFound,
					"not found",
				),
				ValidationFailed,
				"validation failed",
			),
			contains: []string{
				"validation failed",
				"not found",
				"root cause",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errString := tt.err.Error()
			for _, str := range tt.contains {
				assert.Contains(t, errString, str)
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	t.Run("Empty fields", func(t *testing.T) {
		err := New(ValidationFailed, "error")
		customErr := err.(*Error)
		assert.Empty(t, customErr.Fields())
	})

	t.Run("Add fields", func(t *testing.T) {
		fields := Fields{
			"string": "value",
			"int":    42,
			"bool":   true,
		}
		err := WithFields(New(ValidationFailed, "error"), fields)
		customErr := err.(*Error)
		assert.Equal(t, fields, customErr.Fields())
	})

	t.Run("Merge fields", func(t *testing.T) {
		err := WithFields(New(ValidationFailed, "error"), Fields{"a": 1})
		err = WithFields(err, Fields{"b": 2})
		customErr := err.(*Error)
		assert.Len(t, customErr.Fields(), 2)
		assert.Equal(t, 1, customErr.Fields()["a"])
		assert.Equal(t, 2, customErr.Fields()["b"])
	})

	t.Run("Fields render sorted by key", func(t *testing.T) {
		err := WithFields(New(InvalidInput, "bad request"), Fields{
			"zeta":  1,
			"alpha": 2,
		})
		assert.Equal(t, "bad request [alpha=2 zeta=1]", err.Error())
	})

	t.Run("Fields returns copy not reference", func(t *testing.T) {
		err := WithFields(New(ValidationFailed, "error"), Fields{"key": "original"})
		customErr := err.(*Error)

		returned := customErr.Fields()
		returned["key"] = "modified"

		assert.Equal(t, "original", customErr.Fields()["key"])
	})

	t.Run("WithFields on nil error", func(t *testing.T) {
		assert.Nil(t, WithFields(nil, Fields{"key": "value"}))
	})

	t.Run("WithFields on plain error", func(t *testing.T) {
		base := stderrors.New("base error")
		err := WithFields(base, Fields{"context": "test"})

		customErr, ok := err.(*Error)
		require.True(t, ok)
		assert.Equal(t, Unknown, customErr.Code())
		assert.Equal(t, "test", customErr.Fields()["context"])
		assert.Equal(t, base, customErr.Unwrap())
	})
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"coded error", New(NoStrategy, "nope"), NoStrategy},
		{"wrapped", Wrap(stderrors.New("x"), MissingContext, "ctx"), MissingContext},
		{"plain error", stderrors.New("plain"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := New(NoStrategy, "unhandled failure code")

	assert.True(t, HasCode(err, NoStrategy))
	assert.False(t, HasCode(err, MissingContext))
	assert.False(t, HasCode(stderrors.New("plain"), NoStrategy))
	assert.False(t, HasCode(nil, NoStrategy))
}

func TestCheckContext(t *testing.T) {
	t.Run("live context", func(t *testing.T) {
		assert.NoError(t, CheckContext(context.Background(), "simulation"))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := CheckContext(ctx, "simulation")
		require.Error(t, err)
		assert.True(t, HasCode(err, Canceled))
		assert.Contains(t, err.Error(), "simulation canceled")
	})
}
