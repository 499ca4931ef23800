package domain

// RoleInfo mirrors the role record attached to a user.
type RoleInfo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
}

// User is the profile returned by GET /users/me.
type User struct {
	ID       int64     `json:"id"`
	Email    string    `json:"email"`
	IsActive bool      `json:"is_active"`
	Role     *RoleInfo `json:"rol"`
}

// RoleName returns the role name, or "" for users without a role.
func (u User) RoleName() Role {
	if u.Role == nil {
		return RoleNone
	}
	return Role(u.Role.Name)
}
