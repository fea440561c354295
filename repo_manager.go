package placement

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Accounts() Accounts
	Sessions() Sessions
	Verifications() Verifications
	Profiles() Profiles
}

type mngr struct {
	db            *bun.DB
	users         Users
	accounts      Accounts
	sessions      Sessions
	verifications Verifications
	profiles      Profiles
}

// NewRepositoryManager wires every repository over the shared bun DB.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		accounts:      NewAccountRepository(db),
		sessions:      NewSessionRepository(db),
		verifications: NewVerificationRepository(db),
		profiles:      NewProfilesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}
	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}
	if m.verifications == nil {
		return errors.New("repository verifications should be initialized")
	}
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users                 { return m.users }
func (m mngr) Accounts() Accounts           { return m.accounts }
func (m mngr) Sessions() Sessions           { return m.sessions }
func (m mngr) Verifications() Verifications { return m.verifications }
func (m mngr) Profiles() Profiles           { return m.profiles }

// CreateSchema creates the tables this service owns. Idempotent; the server
// runs it at startup instead of a separate migration step.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Account)(nil),
		(*Session)(nil),
		(*VerificationToken)(nil),
		(*Profile)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
