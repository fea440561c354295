package placement

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultCodeTTL is how long verification codes stay valid.
const DefaultCodeTTL = 24 * time.Hour

// Verifications persists one-time numeric codes.
type Verifications interface {
	Create(ctx context.Context, userID uuid.UUID, kind VerificationKind, ttl time.Duration) (*VerificationToken, error)
	FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string, kind VerificationKind) (*VerificationToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForUser(ctx context.Context, userID uuid.UUID, kind VerificationKind) error
}

// VerificationRepository implements Verifications using Bun.
type VerificationRepository struct {
	db *bun.DB
}

// NewVerificationRepository creates a new repository.
func NewVerificationRepository(db *bun.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

var _ Verifications = (*VerificationRepository)(nil)

// Create issues a fresh 6-digit code for the user, invalidating any prior
// unconsumed codes of the same kind so only one code is live at a time.
func (r *VerificationRepository) Create(ctx context.Context, userID uuid.UUID, kind VerificationKind, ttl time.Duration) (*VerificationToken, error) {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	code, err := generateNumericCode()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
	}

	if err := r.DeleteForUser(ctx, userID, kind); err != nil {
		return nil, err
	}

	token := &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		Kind:      kind,
		ExpiresAt: time.Now().Add(ttl),
	}

	if _, err := r.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create verification token")
	}
	return token, nil
}

// FindByUserAndCode returns the matching code row. Expired rows are deleted
// before the expiry error is reported, mirroring the session store's lazy
// garbage collection.
func (r *VerificationRepository) FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string, kind VerificationKind) (*VerificationToken, error) {
	token := &VerificationToken{}
	err := r.db.NewSelect().Model(token).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.kind = ?", kind).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrInvalidCode
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load verification token")
	}

	if token.Expired(time.Now()) {
		if err := r.Delete(ctx, token.ID); err != nil {
			return nil, err
		}
		return nil, ErrCodeExpired
	}

	return token, nil
}

// Delete consumes a single code row.
func (r *VerificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*VerificationToken)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete verification token")
	}
	return nil
}

// DeleteForUser removes all of a user's codes of the given kind.
func (r *VerificationRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, kind VerificationKind) error {
	_, err := r.db.NewDelete().Model((*VerificationToken)(nil)).
		Where("user_id = ?", userID).
		Where("kind = ?", kind).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete verification tokens")
	}
	return nil
}

// generateNumericCode draws a uniform 6-digit code in [100000,999999].
func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
