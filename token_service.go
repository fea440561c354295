package placement

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair is the access/refresh pair minted per authentication event. The
// two tokens are always generated together, never independently.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and validates the service's signed tokens. Access and
// refresh tokens share a payload shape but are signed with distinct secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
	logger        Logger
}

// NewTokenService creates a TokenService instance.
func NewTokenService(cfg *Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		issuer:        TokenIssuer,
		audience:      TokenAudience,
		logger:        logger,
	}
}

// RefreshTTL exposes the refresh token lifetime so session rows share it.
func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}

// GeneratePair mints an access and a refresh token for the user.
func (ts *TokenService) GeneratePair(user *User) (TokenPair, error) {
	access, err := ts.sign(user, ts.accessSecret, ts.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := ts.sign(user, ts.refreshSecret, ts.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (ts *TokenService) sign(user *User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{ts.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:      user.ID.String(),
		Email:    user.Email,
		UserRole: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// VerifyAccess validates an access token's signature, expiry, issuer and
// audience against the access secret.
func (ts *TokenService) VerifyAccess(tokenString string) (*JWTClaims, error) {
	return ts.verify(tokenString, ts.accessSecret, ErrInvalidAccessToken)
}

// VerifyRefresh validates a refresh token against the refresh secret.
func (ts *TokenService) VerifyRefresh(tokenString string) (*JWTClaims, error) {
	return ts.verify(tokenString, ts.refreshSecret, ErrInvalidRefreshToken)
}

func (ts *TokenService) verify(tokenString string, secret []byte, invalid *errors.Error) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(ts.issuer), jwt.WithAudience(ts.audience))

	if err != nil {
		return nil, errors.Wrap(err, invalid.Category, invalid.Message).WithTextCode(invalid.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token verify could not decode claims")
		return nil, invalid
	}

	return claims, nil
}

// ExtractBearer pulls the token out of an Authorization header. Missing
// headers and non-Bearer schemes yield an empty string rather than an error,
// so callers can report "token required" distinctly from "token invalid".
func ExtractBearer(authHeader string) string {
	const scheme = "Bearer "
	if len(authHeader) <= len(scheme) || !strings.EqualFold(authHeader[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(scheme):])
}

// TokenExpiration decodes a token without verifying its signature and returns
// the expiry claim. Malformed input yields the zero time; this is a
// diagnostics helper, not a validation path.
func TokenExpiration(tokenString string) time.Time {
	claims := &JWTClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}
	}
	return claims.Expires()
}
