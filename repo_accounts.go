package placement

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts persists linked provider identities. A user may hold one account
// per provider+providerId pair.
type Accounts interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*Account, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	GetOrCreate(ctx context.Context, account *Account) (*Account, error)
}

// AccountRepository implements Accounts using Bun.
type AccountRepository struct {
	db *bun.DB
}

// NewAccountRepository creates a new repository.
func NewAccountRepository(db *bun.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ Accounts = (*AccountRepository)(nil)

// Create inserts an account row.
func (r *AccountRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
	}
	return account, nil
}

// FindByProviderID returns the account matching provider + provider id.
func (r *AccountRepository) FindByProviderID(ctx context.Context, provider, providerID string) (*Account, error) {
	account := &Account{}
	err := r.db.NewSelect().Model(account).
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.provider_id = ?", providerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, goerrors.New("account not found", goerrors.CategoryNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}
	return account, nil
}

// FindByUserID returns all linked accounts for a user.
func (r *AccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Account, error) {
	var accounts []*Account
	err := r.db.NewSelect().Model(&accounts).
		Where("?TableAlias.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list accounts")
	}
	return accounts, nil
}

// GetOrCreate returns the existing account for the provider pair, creating it
// when absent. Makes external-provider registration idempotent.
func (r *AccountRepository) GetOrCreate(ctx context.Context, account *Account) (*Account, error) {
	if account.ProviderID != "" {
		existing, err := r.FindByProviderID(ctx, account.Provider, account.ProviderID)
		if err == nil {
			return existing, nil
		}
		if !goerrors.IsNotFound(err) {
			return nil, err
		}
	}

	now := time.Now()
	account.CreatedAt = &now
	account.UpdatedAt = &now
	return r.Create(ctx, account)
}
