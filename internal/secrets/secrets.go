// Package secrets encrypts aggregator access tokens at rest.
package secrets

import (
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
)

// TokenCipher encrypts and decrypts tokens with Fernet.
//
// The first key encrypts; every key is tried on decrypt, so keys can be
// rotated by prepending a new one to the list.
type TokenCipher struct {
	keys []*fernet.Key
}

// NewTokenCipher parses a comma-separated list of base64 Fernet keys.
func NewTokenCipher(encodedKeys string) (*TokenCipher, error) {
	var parts []string
	for _, p := range strings.Split(encodedKeys, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no token key configured")
	}

	keys, err := fernet.DecodeKeys(parts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token key: %w", err)
	}
	return &TokenCipher{keys: keys}, nil
}

// GenerateKey returns a new random key in the encoding NewTokenCipher accepts.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return k.Encode(), nil
}

// Encrypt seals a plaintext token.
func (c *TokenCipher) Encrypt(plain string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plain), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return string(tok), nil
}

// Decrypt opens a sealed token. Tokens sealed with an unknown key or altered
// in storage return apperrors.ErrAccountTokenInvalid.
func (c *TokenCipher) Decrypt(sealed string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(sealed), 0, c.keys)
	if msg == nil {
		return "", apperrors.ErrAccountTokenInvalid
	}
	return string(msg), nil
}
