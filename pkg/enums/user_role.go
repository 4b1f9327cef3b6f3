package enums

// UserRole mirrors the role field of the server's user profile.
type UserRole string

const (
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleUser       UserRole = "USER"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRoleUser:
		return true
	}
	return false
}

// IsAdmin reports whether the role may use the admin order operations.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuperAdmin
}

func (r UserRole) String() string {
	return string(r)
}
