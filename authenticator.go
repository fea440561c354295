package placement

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// storeTimeout bounds every authentication flow end to end.
const storeTimeout = 10 * time.Second

// AuthResult is what a successful authentication event yields: the user and a
// freshly minted token pair backed by a session row.
type AuthResult struct {
	User   *User     `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// Authenticator drives the credential flows: registration, login, refresh
// rotation and logout. It owns no HTTP concerns; the controller translates.
type Authenticator struct {
	repo   RepositoryManager
	tokens *TokenService
	hasher Hasher
	logger Logger
}

// NewAuthenticator creates an Authenticator over the given stores.
func NewAuthenticator(repo RepositoryManager, tokens *TokenService, logger Logger) *Authenticator {
	if logger == nil {
		logger = defLogger{}
	}
	return &Authenticator{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a credentials user and signs them in. The email must be
// unused; the role defaults to student when empty.
func (a *Authenticator) Register(ctx context.Context, name, email, password string, role UserRole) (*AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		LoginMethod:  LoginMethodCredentials,
	}

	user, err = a.repo.Users().Register(ctx, user)
	if err != nil {
		return nil, err
	}

	a.logger.Info("registered user %s", user.Email)

	result, err := a.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	// registration doubles as the first login
	if _, err := a.repo.Accounts().Create(ctx, &Account{
		UserID:       user.ID,
		Provider:     LoginMethodCredentials,
		ProviderID:   user.ID.String(),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}); err != nil {
		return nil, err
	}

	if err := a.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		a.logger.Warn("could not track login for %s: %v", user.ID, err)
	}

	return result, nil
}

// Login authenticates a credentials user. Unknown emails and wrong passwords
// report the same error so the endpoint does not confirm which emails exist.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := a.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := checkAccountUsable(user); err != nil {
		return nil, err
	}

	if err := a.hasher.Verify(password, user.PasswordHash); err != nil {
		return nil, err
	}

	if err := a.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		a.logger.Warn("could not track login for %s: %v", user.ID, err)
	}

	return a.startSession(ctx, user)
}

// GoogleProfile is the identity payload received from the OAuth callback.
// The provider tokens are Google's own and are stored on the linked account.
type GoogleProfile struct {
	Name          string
	Email         string
	Image         string
	Provider      string
	ProviderID    string
	AccessToken   string
	RefreshToken  string
	EmailVerified bool
}

// GoogleRegister links a verified Google identity, creating the user and the
// account on first contact. The flow is idempotent: a repeat call with the
// same email or provider id returns the existing records.
func (a *Authenticator) GoogleRegister(ctx context.Context, profile GoogleProfile) (*User, *Account, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := a.repo.Users().GetByEmail(ctx, profile.Email)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			return nil, nil, err
		}

		// First contact: the provider vouches for the email, so the
		// account starts with an unusable local password.
		hash, herr := a.hasher.RandomPasswordHash()
		if herr != nil {
			return nil, nil, herr
		}

		user = &User{
			Name:         profile.Name,
			Email:        profile.Email,
			PasswordHash: hash,
			ProfileImage: profile.Image,
			Role:         RoleStudent,
			LoginMethod:  LoginMethodGoogle,
		}
		if profile.EmailVerified {
			now := time.Now()
			user.EmailVerified = &now
		}

		user, err = a.repo.Users().Register(ctx, user)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("registered google user %s", user.Email)
	}

	if err := checkAccountUsable(user); err != nil {
		return nil, nil, err
	}

	provider := profile.Provider
	if provider == "" {
		provider = LoginMethodGoogle
	}

	account, err := a.repo.Accounts().GetOrCreate(ctx, &Account{
		UserID:       user.ID,
		Provider:     provider,
		ProviderID:   profile.ProviderID,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := a.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		a.logger.Warn("could not track login for %s: %v", user.ID, err)
	}

	return user, account, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the backing
// session in place. The presented token must verify cryptographically AND
// match a live session row; either failure ends the session chain.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	claims, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := a.repo.Sessions().FindByTokenAndUser(ctx, refreshToken, userID)
	if err != nil {
		return nil, err
	}

	user, err := a.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	if err := checkAccountUsable(user); err != nil {
		return nil, err
	}

	pair, err := a.tokens.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	if err := a.repo.Sessions().Rotate(ctx, session, pair.RefreshToken, a.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Logout ends the single session holding the refresh token. It does not
// require a valid access token: a user with an expired access token must
// still be able to log out.
func (a *Authenticator) Logout(ctx context.Context, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	return a.repo.Sessions().DeleteByToken(ctx, refreshToken)
}

// LogoutAll ends every session the user holds across devices.
func (a *Authenticator) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	return a.repo.Sessions().DeleteAllForUser(ctx, userID)
}

func (a *Authenticator) startSession(ctx context.Context, user *User) (*AuthResult, error) {
	pair, err := a.tokens.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	if _, err := a.repo.Sessions().Create(ctx, user.ID, pair.RefreshToken, a.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// checkAccountUsable rejects blocked and soft-deleted accounts. Every flow
// that turns credentials or tokens into access runs this gate.
func checkAccountUsable(user *User) error {
	if user.IsBlocked {
		return ErrAccountBlocked
	}
	if user.IsDeleted {
		return ErrAccountDeleted
	}
	return nil
}
