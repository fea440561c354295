package placement

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the fixed work factor for password hashing.
const BcryptCost = 12

// Hasher is the one-way password hashing service. Hashing happens only at the
// write sites that receive a plaintext secret, never as a persistence hook.
type Hasher struct{}

// Hash generates a salted bcrypt digest for the given plaintext.
func (Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// Verify validates the given cleartext password against a stored digest.
// A mismatch returns ErrInvalidCredentials; anything else is internal.
func (Hasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password comparison failed")
	}
	return nil
}

// RandomPasswordHash produces a hashed throwaway secret for accounts created
// through an external provider, which never log in with a local password.
func (h Hasher) RandomPasswordHash() (string, error) {
	return h.Hash(uuid.NewString())
}
