package uow

import (
	"context"
	"fmt"

	"github.com/corray333/littlelemon/internal/dal/interfaces/icartrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/imenurepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderlinerepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	cartrepo "github.com/corray333/littlelemon/internal/dal/repositories/cart/postgres"
	menurepo "github.com/corray333/littlelemon/internal/dal/repositories/menu/postgres"
	orderrepo "github.com/corray333/littlelemon/internal/dal/repositories/order/postgres"
	orderlinerepo "github.com/corray333/littlelemon/internal/dal/repositories/orderline/postgres"
	outboxrepo "github.com/corray333/littlelemon/internal/dal/repositories/outbox/postgres"
	userrepo "github.com/corray333/littlelemon/internal/dal/repositories/user/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewUnitOfWork creates a unit of work over the client's pool.
func NewUnitOfWork(client *postgres.Client) iuow.UnitOfWork {
	return &unitOfWork{pool: client.Pool()}
}

// Factory returns a unit of work factory bound to client.
func Factory(client *postgres.Client) iuow.Factory {
	return func() iuow.UnitOfWork {
		return NewUnitOfWork(client)
	}
}

// conn is the transaction once begun and the pool otherwise.
func (u *unitOfWork) conn() postgres.GenericConn {
	if u.tx != nil {
		return u.tx
	}

	return u.pool
}

func (u *unitOfWork) MenuRepository() imenurepo.IMenuRepository {
	return menurepo.NewPostgresMenuRepository(u.conn())
}

func (u *unitOfWork) CartRepository() icartrepo.ICartRepository {
	return cartrepo.NewPostgresCartRepository(u.conn())
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return orderrepo.NewPostgresOrderRepository(u.conn())
}

func (u *unitOfWork) OrderLineRepository() iorderlinerepo.IOrderLineRepository {
	return orderlinerepo.NewPostgresOrderLineRepository(u.conn())
}

func (u *unitOfWork) UserRepository() iuserrepo.IUserRepository {
	return userrepo.NewPostgresUserRepository(u.conn())
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return outboxrepo.NewOutboxRepository(u.conn())
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return postgres.WrapError(err, "failed to begin transaction")
	}

	u.tx = tx

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil

	return postgres.WrapError(tx.Commit(ctx), "failed to commit transaction")
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil

	return postgres.WrapError(tx.Rollback(ctx), "failed to rollback transaction")
}
