package placement

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var identityCtxKey = &contextKey{"identity"}

// identityLocalsKey is where the auth middleware stashes the caller on the
// fiber request.
const identityLocalsKey = "auth_identity"

type contextKey struct {
	name string
}

// WithIdentity sets the authenticated Identity in the given context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext finds the Identity in the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// SetFiberIdentity attaches the Identity to the fiber request.
func SetFiberIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityLocalsKey, id)
}

// FiberIdentity extracts the Identity set by the auth middleware.
func FiberIdentity(c *fiber.Ctx) (Identity, bool) {
	raw := c.Locals(identityLocalsKey)
	if raw == nil {
		return Identity{}, false
	}
	id, ok := raw.(Identity)
	return id, ok
}
