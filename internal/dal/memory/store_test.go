package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/shopspring/decimal"
)

func TestRollbackRestoresState(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	work := store.NewUnitOfWork()
	if err := work.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := work.CartRepository().Upsert(ctx, cartline.NewLine(1, 1, 2, decimal.NewFromInt(3))); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := work.OrderRepository().Insert(ctx, order.Order{UserID: 1}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := work.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if len(store.CartLines()) != 0 || len(store.Orders()) != 0 {
		t.Fatalf("rolled back writes are visible: %v %v", store.CartLines(), store.Orders())
	}

	if err := work.Rollback(ctx); err != nil {
		t.Errorf("second Rollback() error = %v", err)
	}
}

func TestCommitKeepsState(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	work := store.NewUnitOfWork()
	if err := work.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	placed, err := work.OrderRepository().Insert(ctx, order.Order{UserID: 1})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := work.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := work.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() after Commit() error = %v", err)
	}

	orders := store.Orders()
	if len(orders) != 1 || orders[0].ID != placed.ID {
		t.Fatalf("orders = %+v, want the committed order", orders)
	}
}

func TestBeginWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewStore().NewUnitOfWork().Begin(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Begin() error = %v, want context.Canceled", err)
	}
}

func TestOrdersAreCopied(t *testing.T) {
	store := NewStore()
	agent := int64(5)
	placed := store.AddOrder(order.Order{UserID: 1, DeliveryAgentID: &agent})

	got, err := store.NewUnitOfWork().OrderRepository().GetByID(context.Background(), placed.ID, false)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	*got.DeliveryAgentID = 99

	if stored := store.Orders()[0]; *stored.DeliveryAgentID != 5 {
		t.Errorf("caller mutation leaked into the store: %d", *stored.DeliveryAgentID)
	}
}

func TestNotFound(t *testing.T) {
	work := NewStore().NewUnitOfWork()
	ctx := context.Background()

	if _, err := work.MenuRepository().GetByID(ctx, 1); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("menu GetByID() error = %v", err)
	}
	if _, err := work.OrderRepository().GetByID(ctx, 1, true); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("order GetByID() error = %v", err)
	}
	if err := work.OrderRepository().UpdateFields(ctx, order.Order{ID: 1}); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("order UpdateFields() error = %v", err)
	}
	if _, err := work.UserRepository().GetByUsername(ctx, "ghost"); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("user GetByUsername() error = %v", err)
	}
	if err := work.UserRepository().AddToGroup(ctx, 1, user.GroupManager); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("user AddToGroup() error = %v", err)
	}
}

func TestOutboxPending(t *testing.T) {
	store := NewStore()
	repo := store.OutboxRepository()
	ctx := context.Background()
	now := time.Now()

	msgs := []outbox.Message{
		{MessageID: "late", MaxAttempts: 3, NextAttemptAt: now.Add(-time.Minute)},
		{MessageID: "early", MaxAttempts: 3, NextAttemptAt: now.Add(-time.Hour)},
		{MessageID: "future", MaxAttempts: 3, NextAttemptAt: now.Add(time.Hour)},
		{MessageID: "exhausted", MaxAttempts: 3, Attempts: 3, NextAttemptAt: now.Add(-time.Hour)},
	}
	for _, m := range msgs {
		if err := repo.Append(ctx, m); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	pending, err := repo.Pending(ctx, 10)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 2 || pending[0].MessageID != "early" || pending[1].MessageID != "late" {
		t.Fatalf("Pending() = %+v", pending)
	}

	limited, _ := repo.Pending(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("Pending(1) = %d messages", len(limited))
	}

	retry := outbox.Retry{Attempts: 1, LastError: "boom", NextAttemptAt: now.Add(time.Hour)}
	if err := repo.ScheduleRetry(ctx, pending[0].ID, retry); err != nil {
		t.Fatalf("ScheduleRetry() error = %v", err)
	}
	if err := repo.Remove(ctx, pending[1].ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := repo.ScheduleRetry(ctx, 999, retry); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("ScheduleRetry() on unknown message error = %v", err)
	}

	if rest, _ := repo.Pending(ctx, 10); len(rest) != 0 {
		t.Errorf("Pending() after retry and remove = %+v", rest)
	}
	if n := len(store.OutboxMessages()); n != 3 {
		t.Errorf("stored messages = %d, want 3", n)
	}
}

func TestLoadSeed(t *testing.T) {
	store := NewStore()
	err := store.Load(Seed{
		Categories: []SeedCategory{{Slug: "mains", Title: "Mains"}},
		MenuItems:  []SeedMenuItem{{Title: "Pasta", Price: "18.99", Category: "mains"}},
		Users:      []SeedUser{{Username: "mary", Groups: []string{user.GroupManager}}},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	item, err := store.NewUnitOfWork().MenuRepository().GetByID(context.Background(), 1)
	if err != nil || !item.Price.Equal(decimal.RequireFromString("18.99")) {
		t.Errorf("seeded item = %+v, %v", item, err)
	}

	mary, err := store.NewUnitOfWork().UserRepository().GetByUsername(context.Background(), "mary")
	if err != nil || !mary.InGroup(user.GroupManager) {
		t.Errorf("seeded user = %+v, %v", mary, err)
	}

	tests := []struct {
		name string
		seed Seed
	}{
		{
			name: "bad price",
			seed: Seed{
				Categories: []SeedCategory{{Slug: "mains"}},
				MenuItems:  []SeedMenuItem{{Title: "Pasta", Price: "cheap", Category: "mains"}},
			},
		},
		{
			name: "unknown category",
			seed: Seed{MenuItems: []SeedMenuItem{{Title: "Pasta", Price: "1", Category: "soups"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewStore().Load(tt.seed); err == nil {
				t.Error("Load() succeeded")
			}
		})
	}
}
