package placement

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultSessionTTL is the refresh session lifetime when none is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Sessions persists active refresh-token sessions. A user may hold several
// concurrent rows, one per device.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) (*Session, error)
	FindByTokenAndUser(ctx context.Context, refreshToken string, userID uuid.UUID) (*Session, error)
	Rotate(ctx context.Context, session *Session, refreshToken string, ttl time.Duration) error
	DeleteByToken(ctx context.Context, refreshToken string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// SessionRepository implements Sessions using Bun.
type SessionRepository struct {
	db *bun.DB
}

// NewSessionRepository creates a new repository.
func NewSessionRepository(db *bun.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ Sessions = (*SessionRepository)(nil)

// Create inserts a session row expiring ttl from now.
func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	session := &Session{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(ttl),
	}

	if _, err := r.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session")
	}
	return session, nil
}

// FindByTokenAndUser returns the session matching the token for that user.
// Expired rows are deleted before the expiry error is reported, so stale
// sessions are garbage collected on the read path rather than by a sweeper.
func (r *SessionRepository) FindByTokenAndUser(ctx context.Context, refreshToken string, userID uuid.UUID) (*Session, error) {
	session := &Session{}
	err := r.db.NewSelect().Model(session).
		Where("?TableAlias.refresh_token = ?", refreshToken).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session")
	}

	if session.Expired(time.Now()) {
		if _, err := r.db.NewDelete().Model((*Session)(nil)).
			Where("id = ?", session.ID).
			Exec(ctx); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete expired session")
		}
		return nil, ErrRefreshTokenExpired
	}

	return session, nil
}

// Rotate replaces the token value and expiry on the same row. Once rotated,
// the previous token value no longer matches any row.
func (r *SessionRepository) Rotate(ctx context.Context, session *Session, refreshToken string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now()
	session.RefreshToken = refreshToken
	session.ExpiresAt = now.Add(ttl)
	session.UpdatedAt = &now

	_, err := r.db.NewUpdate().Model(session).
		Column("refresh_token", "expires_at", "updated_at").
		Where("id = ?", session.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate session")
	}
	return nil
}

// DeleteByToken removes the single session holding the token. Deleting a
// token that no longer exists is not an error; logout is idempotent.
func (r *SessionRepository) DeleteByToken(ctx context.Context, refreshToken string) error {
	_, err := r.db.NewDelete().Model((*Session)(nil)).
		Where("refresh_token = ?", refreshToken).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session")
	}
	return nil
}

// DeleteAllForUser removes every session row owned by the user.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Session)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user sessions")
	}
	return nil
}
