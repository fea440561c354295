package placement

import (
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AuthMiddleware guards routes behind a valid access token and a live user.
type AuthMiddleware struct {
	repo   RepositoryManager
	tokens *TokenService
	logger Logger
}

// NewAuthMiddleware creates the middleware over the given stores.
func NewAuthMiddleware(repo RepositoryManager, tokens *TokenService, logger Logger) *AuthMiddleware {
	if logger == nil {
		logger = defLogger{}
	}
	return &AuthMiddleware{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth verifies the bearer access token, re-reads the user and
// attaches the caller's Identity to the request. The user row is checked on
// every request so blocking or deleting an account takes effect immediately,
// not at token expiry.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ExtractBearer(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return ErrAccessTokenRequired
		}

		claims, err := m.tokens.VerifyAccess(tokenString)
		if err != nil {
			return err
		}

		userID, err := uuid.Parse(claims.UserID())
		if err != nil {
			return ErrInvalidAccessToken
		}

		user, err := m.repo.Users().GetByID(c.Context(), userID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserGone
			}
			return err
		}

		if user.IsBlocked {
			return ErrAccountBlocked
		}
		if user.IsDeleted {
			// a deleted account presents as nonexistent
			return ErrUserNotFound
		}

		SetFiberIdentity(c, Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})

		return c.Next()
	}
}

// NewRequestLogger logs one line per completed request with method, path,
// status and duration.
func NewRequestLogger(logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFromError(err)
		}

		logger.Info("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

// RequireRoles allows only callers whose role is in the allow list. Must run
// after RequireAuth; a request with no identity is treated as unauthenticated.
func (m *AuthMiddleware) RequireRoles(allowed ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := FiberIdentity(c)
		if !ok {
			return ErrAccessTokenRequired
		}

		if !RoleIn(id.Role, allowed...) {
			m.logger.Warn("role %q denied for %s %s", id.Role, c.Method(), c.Path())
			return ErrInsufficientRole
		}

		return c.Next()
	}
}
