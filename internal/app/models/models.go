package models

// RoleType defines the user role type
type RoleType string

const (
	RoleUser     RoleType = "user"
	RoleEmployer RoleType = "employer"
	RoleAdmin    RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// AuthProvider identifies how an account signs in
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderGoogle   AuthProvider = "google"
	ProviderLinkedIn AuthProvider = "linkedin"
)

// Identity is the {id, email, role} tuple reconstructed from a verified token
type Identity struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Role  RoleType `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManage reports whether the identity owns the resource or is an admin
func (i Identity) CanManage(ownerID int64) bool {
	return i.IsAdmin() || i.ID == ownerID
}

// HasRole reports whether the identity's role is one of roles
func (i Identity) HasRole(roles ...RoleType) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
