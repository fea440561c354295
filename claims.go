package placement

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims is the token payload for both access and refresh tokens:
// user id, email and role on top of the registered claim set.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Email    string   `json:"email,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// UserID returns the user id, falling back to the subject claim.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the role claim.
func (c *JWTClaims) Role() UserRole {
	return c.UserRole
}

// Expires returns the expiration time, zero when absent.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Identity is the authenticated caller attached to the request context by the
// auth middleware. Protected handlers receive it explicitly; it cannot be
// forged from a request body.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   UserRole
}
