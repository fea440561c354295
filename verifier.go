package placement

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Verifier issues and consumes one-time email verification codes.
type Verifier struct {
	repo    RepositoryManager
	mailer  Mailer
	logger  Logger
	codeTTL time.Duration
}

// NewVerifier creates a Verifier. A zero ttl falls back to DefaultCodeTTL.
func NewVerifier(repo RepositoryManager, mailer Mailer, logger Logger, ttl time.Duration) *Verifier {
	if logger == nil {
		logger = defLogger{}
	}
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &Verifier{
		repo:    repo,
		mailer:  mailer,
		logger:  logger,
		codeTTL: ttl,
	}
}

// IssueEmailVerification generates a fresh code for the user's email and
// mails it. Reissuing invalidates any earlier unconsumed code, so only the
// most recent code can verify. Delivery happens off the request path; a mail
// failure is logged but does not fail the issue.
func (v *Verifier) IssueEmailVerification(ctx context.Context, email string) (*VerificationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := v.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := checkAccountUsable(user); err != nil {
		return nil, err
	}

	token, err := v.repo.Verifications().Create(ctx, user.ID, VerificationEmail, v.codeTTL)
	if err != nil {
		return nil, err
	}

	go v.deliver(user.Email, token.Code)

	return token, nil
}

// ConsumeEmailVerification checks the submitted code and marks the user's
// email verified. The code is single-use: it is deleted on success. A wrong
// or expired code leaves the verified state untouched.
func (v *Verifier) ConsumeEmailVerification(ctx context.Context, email, code string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := v.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := checkAccountUsable(user); err != nil {
		return nil, err
	}

	token, err := v.repo.Verifications().FindByUserAndCode(ctx, user.ID, code, VerificationEmail)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := v.repo.Users().MarkEmailVerified(ctx, user.ID, now); err != nil {
		return nil, err
	}

	if err := v.repo.Verifications().Delete(ctx, token.ID); err != nil {
		v.logger.Warn("could not delete consumed code for %s: %v", user.ID, err)
	}

	user.EmailVerified = &now
	return user, nil
}

// IsEmailVerified reports whether the user behind the email has verified it.
func (v *Verifier) IsEmailVerified(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := v.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.EmailVerified != nil, nil
}

func (v *Verifier) deliver(email, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := fmt.Sprintf("Your verification code is %s. It expires in %s.", code, v.codeTTL)
	if err := v.mailer.Send(ctx, email, "Verify your email", body); err != nil {
		v.logger.Error("verification mail to %s failed: %v", email, err)
	}
}
