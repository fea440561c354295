package placement

// UserRole is the user's role
type UserRole = string

const (
	// RoleStudent is the default role for self-registered candidates
	RoleStudent UserRole = "student"
	// RoleRecruiter can manage postings for their company
	RoleRecruiter UserRole = "recruiter"
	// RoleAdmin administers the platform
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleRecruiter, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole, reporting validity
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{RoleStudent, RoleRecruiter, RoleAdmin}
}

// RoleIn reports whether role is present in the allow list.
func RoleIn(role UserRole, allowed ...UserRole) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// LoginMethod identifies how an account authenticates
type LoginMethod = string

const (
	LoginMethodCredentials LoginMethod = "credentials"
	LoginMethodGoogle      LoginMethod = "google"
)

// VerificationKind distinguishes one-time code purposes
type VerificationKind = string

const (
	VerificationEmail         VerificationKind = "email_verification"
	VerificationPasswordReset VerificationKind = "password_reset"
)
