package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/littlelemon/internal/dal/memory"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	fail      map[string]bool
}

func (p *fakePublisher) Publish(_ context.Context, msg outbox.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail[msg.MessageID] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, msg.MessageID)

	return nil
}

func TestProcessMessages(t *testing.T) {
	store := memory.NewStore()
	repo := store.OutboxRepository()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Append(ctx, outbox.Message{
			MessageID:     id,
			RoutingKey:    "order.placed",
			MaxAttempts:   5,
			NextAttemptAt: time.Now().Add(-time.Second),
		}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	publisher := &fakePublisher{fail: map[string]bool{"b": true}}
	w := NewWorker(repo, publisher)

	before := time.Now()
	w.processMessages(ctx)

	if len(publisher.published) != 2 {
		t.Fatalf("published = %v, want a and c", publisher.published)
	}

	left := store.OutboxMessages()
	if len(left) != 1 || left[0].MessageID != "b" {
		t.Fatalf("outbox after run = %+v, want only b", left)
	}
	if left[0].Attempts != 1 || left[0].LastError != "broker unavailable" {
		t.Errorf("retry info = %d %q", left[0].Attempts, left[0].LastError)
	}
	if !left[0].NextAttemptAt.After(before.Add(w.retryInterval)) {
		t.Errorf("next retry %v is not pushed back by the backoff", left[0].NextAttemptAt)
	}

	w.processMessages(ctx)
	if len(publisher.published) != 2 {
		t.Errorf("message b was retried before its backoff elapsed")
	}
}

func TestBackoff(t *testing.T) {
	w := &Worker{retryInterval: 30 * time.Second}

	for n, want := range map[int]time.Duration{
		0: 30 * time.Second,
		1: time.Minute,
		3: 4 * time.Minute,
	} {
		if got := w.backoff(n); got != want {
			t.Errorf("backoff(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestStartStops(t *testing.T) {
	w := NewWorker(memory.NewStore().OutboxRepository(), &fakePublisher{})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}
