package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

type recordingSender struct {
	mu   sync.Mutex
	got  []domain.Notification
	done chan struct{}
	want int
}

func (s *recordingSender) Send(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	if len(s.got) == s.want {
		close(s.done)
	}
	return nil
}

func TestDispatcher_DeliversInOrderPerUser(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}), want: 3}
	d := NewDispatcher(4, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.Notification{UserID: "usr_1", Title: "first"})
	d.Enqueue(domain.Notification{UserID: "usr_1", Title: "second"})
	d.Enqueue(domain.Notification{UserID: "usr_2", Title: "other"})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	var forUser1 []string
	for _, n := range sender.got {
		if n.UserID == "usr_1" {
			forUser1 = append(forUser1, n.Title)
		}
	}
	if len(forUser1) != 2 || forUser1[0] != "first" || forUser1[1] != "second" {
		t.Errorf("per-user ordering violated: %v", forUser1)
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingSender{done: make(chan struct{}), want: 0}, zerolog.Nop())
	first := d.shardIndex("usr_42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("usr_42") != first {
			t.Fatal("shard index must be deterministic")
		}
	}
}
