package entity

import (
	"time"
)

// User is the aggregate root for account-lifecycle operations. Deleting a
// user requires its blog content to be purged first.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID        string
	Username  string
	Email     string
	Phone     string
	ImageURL  string // public path of the profile image, empty when unset
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
