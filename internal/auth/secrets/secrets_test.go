package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coinquest/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	t.Run("hash differs from plaintext and verifies only the original", func(t *testing.T) {
		hash, err := Hash("correct horse")
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse", hash)
		assert.True(t, Verify("correct horse", hash))
		assert.False(t, Verify("correct horsE", hash))
		assert.False(t, Verify("", hash))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, err := Hash("password123")
		require.NoError(t, err)
		h2, err := Hash("password123")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("empty password rejected", func(t *testing.T) {
		_, err := Hash("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("overlong password rejected", func(t *testing.T) {
		_, err := Hash(strings.Repeat("x", 73))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("malformed hash never verifies", func(t *testing.T) {
		assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	})
}
