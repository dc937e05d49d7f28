package entity

import "time"

// Role represents an authorization role. Each user carries exactly one role
// via user_roles.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Built-in role names.
const (
	RoleAdmin   = "admin"
	RoleBlogger = "blogger"
)
