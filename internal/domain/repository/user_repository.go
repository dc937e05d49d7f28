package repository

import (
	"context"
	"errors"

	"github.com/bislerium/blog-backend/internal/domain/entity"
)

// ErrNotFound is returned by repository implementations when a queried row
// does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the identity-store operations consumed by the
// account workflow. Implementations report ErrNotFound when a lookup misses
// so callers can map it cleanly.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	RoleExists(ctx context.Context, name string) (bool, error)
	AssignRole(ctx context.Context, userID, roleName string) error
	GetRoles(ctx context.Context, userID string) ([]string, error)
}
