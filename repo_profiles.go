package placement

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles stores the candidate profile document, one per user.
type Profiles interface {
	repository.Repository[*Profile]

	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertForUser(ctx context.Context, profile *Profile) (*Profile, error)
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
)

// NewProfilesRepository builds the Profiles repository over a bun DB.
func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (r *profiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrProfileNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile")
	}
	return record, nil
}

// UpsertForUser writes the profile document keyed on its owning user.
func (r *profiles) UpsertForUser(ctx context.Context, profile *Profile) (*Profile, error) {
	existing, err := r.GetByUserID(ctx, profile.UserID)
	if err == nil {
		now := time.Now()
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		profile.UpdatedAt = &now

		record, err := r.Repository.UpdateTx(ctx, r.db, profile, repository.UpdateByID(profile.ID.String()))
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update profile")
		}
		return record, nil
	}

	if !goerrors.IsNotFound(err) {
		return nil, err
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	record, err := r.Repository.CreateTx(ctx, r.db, profile)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create profile")
	}
	return record, nil
}
