package placement

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential-store record. Users are never physically removed;
// deletion flips the soft-delete flag.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string      `bun:"name" json:"name,omitempty"`
	Email         string      `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string      `bun:"password_hash,notnull" json:"-"`
	ProfileImage  string      `bun:"profile_image" json:"profile_image,omitempty"`
	Role          UserRole    `bun:"user_role,notnull" json:"role,omitempty"`
	LoginMethod   LoginMethod `bun:"login_method" json:"login_method,omitempty"`
	EmailVerified *time.Time  `bun:"email_verified,nullzero" json:"email_verified,omitempty"`
	LastLoginAt   *time.Time  `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	IsBlocked     bool        `bun:"is_blocked,notnull,default:false" json:"is_blocked,omitempty"`
	IsDeleted     bool        `bun:"is_deleted,notnull,default:false" json:"is_deleted,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Account links a user to an external identity provider. The access/refresh
// tokens here are the provider's own opaque tokens, not this service's JWTs.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Provider      string     `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderID    string     `bun:"provider_id" json:"provider_id,omitempty"`
	AccessToken   string     `bun:"access_token" json:"access_token,omitempty"`
	RefreshToken  string     `bun:"refresh_token" json:"refresh_token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Session holds one device's active refresh token. Rotation overwrites the
// token value in place, so a stolen pre-rotation token stops matching.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	RefreshToken  string     `bun:"refresh_token,notnull" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Expired reports whether the session's refresh token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// VerificationToken is a short-lived one-time numeric code.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID        `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Code          string           `bun:"code,notnull" json:"-"`
	Kind          VerificationKind `bun:"kind,notnull" json:"kind,omitempty"`
	ExpiresAt     time.Time        `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the code is past its expiry.
func (v *VerificationToken) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}

// ProfileExperience is one work-experience entry on a candidate profile.
type ProfileExperience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Duration    string `json:"duration"`
}

// ProfileEducation is one education entry on a candidate profile.
type ProfileEducation struct {
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	Grade        string     `json:"grade"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// ProfileProject is one showcased project on a candidate profile.
type ProfileProject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	LiveDemo     string   `json:"live_demo"`
	SourceCode   string   `json:"source_code"`
}

// ProfileAchievement is one achievement entry on a candidate profile.
type ProfileAchievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Profile is the candidate profile document owned by a user.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID            `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID            `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	Name          string               `bun:"name,notnull" json:"name"`
	Email         string               `bun:"email,notnull" json:"email"`
	Phone         string               `bun:"phone" json:"phone,omitempty"`
	Image         string               `bun:"image" json:"image,omitempty"`
	Location      string               `bun:"location" json:"location,omitempty"`
	Bio           string               `bun:"bio" json:"bio,omitempty"`
	Skills        []string             `bun:"skills,type:jsonb" json:"skills,omitempty"`
	Experience    []ProfileExperience  `bun:"experience,type:jsonb" json:"experience,omitempty"`
	Education     []ProfileEducation   `bun:"education,type:jsonb" json:"education,omitempty"`
	Projects      []ProfileProject     `bun:"projects,type:jsonb" json:"projects,omitempty"`
	Achievements  []ProfileAchievement `bun:"achievements,type:jsonb" json:"achievements,omitempty"`
	CreatedAt     *time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the wire representation of a user, excluding the secret.
type PublicUser struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email"`
	Role          UserRole   `json:"role"`
	LoginMethod   string     `json:"login_method,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	ProfileImage  string     `json:"profile_image,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Public strips the password hash and status flags for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		LoginMethod:   u.LoginMethod,
		EmailVerified: u.EmailVerified,
		ProfileImage:  u.ProfileImage,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
