package placement

import (
	"github.com/goliatone/go-errors"
)

// Sentinel errors for the auth core. Messages are short fixed strings; the
// HTTP boundary maps categories to status codes and never leaks internals.
var (
	ErrEmailTaken = errors.New("User with this email already exists", errors.CategoryConflict).
			WithTextCode("EMAIL_TAKEN")

	ErrInvalidCredentials = errors.New("Invalid email or password", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS")

	ErrAccountBlocked = errors.New("Account is blocked", errors.CategoryAuthz).
				WithTextCode("ACCOUNT_BLOCKED")

	ErrAccountDeleted = errors.New("Account is deleted", errors.CategoryAuthz).
				WithTextCode("ACCOUNT_DELETED")

	ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
			WithTextCode("USER_NOT_FOUND")

	ErrProfileNotFound = errors.New("Profile not found", errors.CategoryNotFound).
				WithTextCode("PROFILE_NOT_FOUND")

	ErrAccessTokenRequired = errors.New("Access token required", errors.CategoryAuth).
				WithTextCode("TOKEN_REQUIRED")

	ErrInvalidAccessToken = errors.New("Invalid or expired access token", errors.CategoryAuth).
				WithTextCode("INVALID_ACCESS_TOKEN")

	ErrInvalidRefreshToken = errors.New("Invalid or expired refresh token", errors.CategoryAuth).
				WithTextCode("INVALID_REFRESH_TOKEN")

	ErrRefreshTokenNotFound = errors.New("Refresh token not found", errors.CategoryAuth).
				WithTextCode("REFRESH_NOT_FOUND")

	ErrRefreshTokenExpired = errors.New("Refresh token expired", errors.CategoryAuth).
				WithTextCode("REFRESH_EXPIRED")

	ErrUserGone = errors.New("User no longer exists", errors.CategoryAuth).
			WithTextCode("USER_GONE")

	ErrInsufficientRole = errors.New("Insufficient permissions", errors.CategoryAuthz).
				WithTextCode("INSUFFICIENT_ROLE")

	ErrInvalidCode = errors.New("Invalid code", errors.CategoryValidation).
			WithTextCode("INVALID_CODE")

	ErrCodeExpired = errors.New("Code has expired", errors.CategoryValidation).
			WithTextCode("CODE_EXPIRED")

	ErrEmptyPassword = errors.New("Password must not be empty", errors.CategoryValidation).
			WithTextCode("EMPTY_PASSWORD")
)
