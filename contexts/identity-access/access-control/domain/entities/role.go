package entities

// Role is the single-axis privilege level of an account.
// Supreme is the highest role and the only one able to grant moderator status.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleSupreme   Role = "supreme"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleModerator, RoleSupreme:
		return true
	default:
		return false
	}
}

// Moderates reports whether the role carries ban/unban authority.
func (r Role) Moderates() bool {
	return r == RoleModerator || r == RoleSupreme
}
