package iuserrepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/user"
)

// IUserRepository is an interface for users and their group memberships.
type IUserRepository interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	ListByGroup(ctx context.Context, group string) ([]user.User, error)
	AddToGroup(ctx context.Context, userID int64, group string) error
	// RemoveFromGroup reports whether the user was a member.
	RemoveFromGroup(ctx context.Context, userID int64, group string) (bool, error)
}
