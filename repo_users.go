package placement

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var markEmailVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"email_verified" = ?,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
AND "usr"."is_deleted" = FALSE;`

var trackLoginSQL = `UPDATE "users" AS "usr"
SET
	"last_login_at" = ?,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
AND "usr"."is_deleted" = FALSE;`

// Users is the credential store. It only exposes the operations the auth core
// needs; rows are soft-deleted, never removed.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository builds the Users repository over a bun DB.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	existing := &User{}
	err := tx.NewSelect().Model(existing).
		Where("?TableAlias.email = ?", user.Email).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !isNoRows(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing email")
	}

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}
	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user by email")
	}
	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user by id")
	}
	return record, nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	now := time.Now()
	_, err := a.db.NewRaw(trackLoginSQL, now, now, user.ID).Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
	}
	user.LastLoginAt = &now
	return nil
}

func (a *users) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := a.db.NewRaw(markEmailVerifiedSQL, at, time.Now(), id).Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
	}
	return nil
}

func (a *users) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	_, err := a.db.NewUpdate().Model((*User)(nil)).
		Set("is_blocked = ?", blocked).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update blocked flag")
	}
	return nil
}

func (a *users) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().Model((*User)(nil)).
		Set("is_deleted = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to soft delete user")
	}
	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleStudent
	}

	if record.LoginMethod == "" {
		record.LoginMethod = LoginMethodCredentials
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
