package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("wrap keeps cause reachable", func(t *testing.T) {
		err := Wrap(cause, CodeInternal, "failed to load user")
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeInternal))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load user: connection refused", err.Error())
	})

	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeNotFound, "category not found"))
		assert.True(t, Is(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))

		de, ok := From(err)
		require.True(t, ok)
		assert.Equal(t, "category not found", de.Message)
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(cause, CodeInternal))
		_, ok := From(cause)
		assert.False(t, ok)
	})
}

func TestInvariantToValidation(t *testing.T) {
	converted := InvariantToValidation(New(CodeInvariantViolation, "amount must be positive"))
	assert.True(t, HasCode(converted, CodeValidation))
	assert.Equal(t, "amount must be positive", converted.Error())

	notFound := New(CodeNotFound, "category not found")
	assert.Same(t, notFound, InvariantToValidation(notFound))
	assert.Nil(t, InvariantToValidation(nil))
}
