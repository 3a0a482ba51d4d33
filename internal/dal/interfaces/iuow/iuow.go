package iuow

import (
	"context"

	"github.com/corray333/littlelemon/internal/dal/interfaces/icartrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/imenurepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderlinerepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuserrepo"
)

// UnitOfWork groups repositories behind one transaction.
// Without Begin the repositories run outside any transaction.
// Rollback after Commit is a no-op, so it can always be deferred.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	MenuRepository() imenurepo.IMenuRepository
	CartRepository() icartrepo.ICartRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderLineRepository() iorderlinerepo.IOrderLineRepository
	UserRepository() iuserrepo.IUserRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Factory creates a fresh unit of work per operation.
type Factory func() UnitOfWork
