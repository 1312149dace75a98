package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Webhook signing secrets are shown to the user exactly once at creation;
// only the bcrypt hash is stored.

const defaultCost = 12

// SecretService generates webhook secrets and verifies presented ones
// against their stored hashes.
type SecretService struct {
	cost int
}

func NewSecretService() *SecretService {
	return &SecretService{cost: defaultCost}
}

// NewSecretServiceForTest uses a low bcrypt cost so tests don't pay the
// production work factor. Not for production use.
func NewSecretServiceForTest(cost int) *SecretService {
	return &SecretService{cost: cost}
}

// Generate returns a fresh random secret and its bcrypt hash. The secret
// goes to the caller once; the hash goes to storage.
func (s *SecretService) Generate() (secret, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("auth: generating webhook secret: %w", err)
	}
	secret = "whs_" + hex.EncodeToString(raw)

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", "", fmt.Errorf("auth: hashing webhook secret: %w", err)
	}
	return secret, string(hashed), nil
}

// Verify checks a presented secret against a stored hash. bcrypt compares
// in constant time.
func (s *SecretService) Verify(hash, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid webhook secret")
		}
		return fmt.Errorf("auth: comparing webhook secret hash: %w", err)
	}
	return nil
}
