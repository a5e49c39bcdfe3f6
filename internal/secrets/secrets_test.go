package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
)

func newCipher(t *testing.T) (*TokenCipher, string) {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewTokenCipher(key)
	require.NoError(t, err)
	return c, key
}

func TestTokenCipher(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		c, _ := newCipher(t)

		sealed, err := c.Encrypt("access-sandbox-123")
		require.NoError(t, err)
		assert.NotContains(t, sealed, "access-sandbox-123")

		plain, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, "access-sandbox-123", plain)
	})

	t.Run("foreign key is rejected", func(t *testing.T) {
		a, _ := newCipher(t)
		b, _ := newCipher(t)

		sealed, err := a.Encrypt("secret")
		require.NoError(t, err)

		_, err = b.Decrypt(sealed)
		assert.ErrorIs(t, err, apperrors.ErrAccountTokenInvalid)
	})

	t.Run("rotated key still decrypts old tokens", func(t *testing.T) {
		old, oldKey := newCipher(t)
		sealed, err := old.Encrypt("secret")
		require.NoError(t, err)

		newKey, err := GenerateKey()
		require.NoError(t, err)
		rotated, err := NewTokenCipher(newKey + "," + oldKey)
		require.NoError(t, err)

		plain, err := rotated.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, "secret", plain)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		c, _ := newCipher(t)
		_, err := c.Decrypt("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrAccountTokenInvalid)
	})

	t.Run("empty or malformed key", func(t *testing.T) {
		_, err := NewTokenCipher(" , ")
		assert.Error(t, err)
		_, err = NewTokenCipher("short")
		assert.Error(t, err)
	})
}
