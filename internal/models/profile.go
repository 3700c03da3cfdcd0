package models

// Role is the coarse permission level of a household member.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is a household member account. Admins additionally manage the
// list lifecycle and the product catalog.
type Profile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string

	// DisplayName is shown in the UI and defaults the orderer name field.
	DisplayName string

	// Email is the login identifier, unique per household.
	Email string

	// PasswordHash is the bcrypt hash of the member's password.
	PasswordHash string

	// Role determines admin-gated capabilities.
	Role Role

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
