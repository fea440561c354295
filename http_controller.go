package placement

import (
	"errors"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// APIController owns the JSON HTTP surface. Handlers bind and validate the
// payload, call into the domain services and shape the response; all error
// rendering happens in the app-level error handler.
type APIController struct {
	Logger   Logger
	Repo     RepositoryManager
	Auther   *Authenticator
	Verifier *Verifier
}

// NewAPIController creates the controller.
func NewAPIController(repo RepositoryManager, auther *Authenticator, verifier *Verifier, logger Logger) *APIController {
	if repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}
	if auther == nil {
		panic("Missing Authenticator in api controller...")
	}
	if verifier == nil {
		panic("Missing Verifier in api controller...")
	}
	if logger == nil {
		logger = defLogger{}
	}

	return &APIController{
		Logger:   logger,
		Repo:     repo,
		Auther:   auther,
		Verifier: verifier,
	}
}

// RegisterRoutes mounts every endpoint under the router, typically the /api
// group. The middleware gates the bearer-protected routes.
func (a *APIController) RegisterRoutes(api fiber.Router, mw *AuthMiddleware) {
	api.Get("/health", a.Health)

	auth := api.Group("/auth")
	auth.Post("/register", a.Register)
	auth.Post("/login", a.Login)
	auth.Post("/refresh-token", a.RefreshToken)
	auth.Post("/logout", a.Logout)
	auth.Post("/logout-all", mw.RequireAuth(), a.LogoutAll)
	auth.Get("/profile", mw.RequireAuth(), a.CurrentUser)
	auth.Post("/create-verification-token", a.CreateVerificationToken)
	auth.Post("/verify-email", a.VerifyEmail)
	auth.Get("/check-email/:email", a.CheckEmail)
	auth.Get("/check-email-verification/:email", a.CheckEmailVerification)

	api.Post("/google/register", a.GoogleRegister)

	user := api.Group("/user", mw.RequireAuth())
	user.Get("/profile", a.GetProfile)
	user.Put("/profile", a.PutProfile)
}

// Health reports liveness.
func (a *APIController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(ValidatePasswordStrength)),
		validation.Field(&r.Role, validation.In(RoleStudent, RoleRecruiter, RoleAdmin)),
	)
}

func (a *APIController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	result, err := a.Auther.Register(c.Context(), payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         result.User.Public(),
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	result, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":         result.User.Public(),
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *APIController) RefreshToken(c *fiber.Ctx) error {
	payload := new(RefreshRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	result, err := a.Auther.Refresh(c.Context(), payload.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Logout ends the session holding the submitted refresh token. No bearer
// required: expired access tokens must not strand a logout.
func (a *APIController) Logout(c *fiber.Ctx) error {
	payload := new(RefreshRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	if err := a.Auther.Logout(c.Context(), payload.RefreshToken); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (a *APIController) LogoutAll(c *fiber.Ctx) error {
	id, ok := FiberIdentity(c)
	if !ok {
		return ErrAccessTokenRequired
	}

	if err := a.Auther.LogoutAll(c.Context(), id.UserID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Logged out from all devices"})
}

// CurrentUser returns the authenticated user's record.
func (a *APIController) CurrentUser(c *fiber.Ctx) error {
	id, ok := FiberIdentity(c)
	if !ok {
		return ErrAccessTokenRequired
	}

	user, err := a.Repo.Users().GetByID(c.Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user.Public()})
}

// EmailRequest payload
type EmailRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *APIController) CreateVerificationToken(c *fiber.Ctx) error {
	payload := new(EmailRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	if _, err := a.Verifier.IssueEmailVerification(c.Context(), payload.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

// VerifyEmailRequest payload; the code travels wrapped in a data envelope.
type VerifyEmailRequest struct {
	Data struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	} `json:"data"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r.Data,
		validation.Field(&r.Data.Email, validation.Required, is.Email),
		validation.Field(&r.Data.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *APIController) VerifyEmail(c *fiber.Ctx) error {
	payload := new(VerifyEmailRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	if _, err := a.Verifier.ConsumeEmailVerification(c.Context(), payload.Data.Email, payload.Data.Code); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

func (a *APIController) CheckEmail(c *fiber.Ctx) error {
	email := c.Params("email")

	_, err := a.Repo.Users().GetByEmail(c.Context(), email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return c.JSON(fiber.Map{"exists": false})
		}
		return err
	}

	return c.JSON(fiber.Map{"exists": true})
}

func (a *APIController) CheckEmailVerification(c *fiber.Ctx) error {
	verified, err := a.Verifier.IsEmailVerified(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"verified": verified})
}

// GoogleRegisterRequest payload
type GoogleRegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Image         string `json:"image"`
	Provider      string `json:"provider"`
	ProviderID    string `json:"providerId"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	EmailVerified bool   `json:"emailVerified"`
}

// Validate will run validation rules
func (r GoogleRegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.ProviderID, validation.Required),
	)
}

func (a *APIController) GoogleRegister(c *fiber.Ctx) error {
	payload := new(GoogleRegisterRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	user, account, err := a.Auther.GoogleRegister(c.Context(), GoogleProfile{
		Name:          payload.Name,
		Email:         payload.Email,
		Image:         payload.Image,
		Provider:      payload.Provider,
		ProviderID:    payload.ProviderID,
		AccessToken:   payload.AccessToken,
		RefreshToken:  payload.RefreshToken,
		EmailVerified: payload.EmailVerified,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user.Public(),
		"account": account,
	})
}

// ProfileRequest is the candidate profile document as submitted by the owner.
type ProfileRequest struct {
	Name         string               `json:"name"`
	Phone        string               `json:"phone"`
	Image        string               `json:"image"`
	Location     string               `json:"location"`
	Bio          string               `json:"bio"`
	Skills       []string             `json:"skills"`
	Experience   []ProfileExperience  `json:"experience"`
	Education    []ProfileEducation   `json:"education"`
	Projects     []ProfileProject     `json:"projects"`
	Achievements []ProfileAchievement `json:"achievements"`
}

// Validate will run validation rules
func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
	)
}

func (a *APIController) GetProfile(c *fiber.Ctx) error {
	id, ok := FiberIdentity(c)
	if !ok {
		return ErrAccessTokenRequired
	}

	profile, err := a.Repo.Profiles().GetByUserID(c.Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (a *APIController) PutProfile(c *fiber.Ctx) error {
	id, ok := FiberIdentity(c)
	if !ok {
		return ErrAccessTokenRequired
	}

	payload := new(ProfileRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	name := payload.Name
	if name == "" {
		// profile name mirrors the account name unless overridden
		if user, err := a.Repo.Users().GetByID(c.Context(), id.UserID); err == nil {
			name = user.Name
		}
	}

	profile, err := a.Repo.Profiles().UpsertForUser(c.Context(), &Profile{
		UserID:       id.UserID,
		Name:         name,
		Email:        id.Email,
		Phone:        payload.Phone,
		Image:        payload.Image,
		Location:     payload.Location,
		Bio:          payload.Bio,
		Skills:       payload.Skills,
		Experience:   payload.Experience,
		Education:    payload.Education,
		Projects:     payload.Projects,
		Achievements: payload.Achievements,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// bindAndValidate parses the JSON body into the payload and runs its
// validation rules. Either failure is a 400 carrying the parse or rule
// message.
func bindAndValidate(c *fiber.Ctx, payload interface{ Validate() error }) error {
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error())
	}

	return nil
}

// ValidatePasswordStrength enforces the platform password policy: at least 8
// characters mixing a letter, a digit and a special character.
func ValidatePasswordStrength(value any) error {
	s, _ := value.(string)
	if len(s) < 8 {
		return errors.New("must be at least 8 characters")
	}

	var letter, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !letter || !digit || !special {
		return errors.New("must include a letter, a number and a special character")
	}
	return nil
}
