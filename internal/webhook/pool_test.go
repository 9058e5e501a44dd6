package webhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/pkg/queue"
	queue_memory "github.com/flowcore-ai/flowcore/internal/pkg/queue/memory"
)

type countingConnectionSink struct {
	updates chan string
}

func (c *countingConnectionSink) UpdateConnection(ctx context.Context, instance, status, reason string) error {
	c.updates <- status
	return nil
}

func TestPoolDrainsQueue(t *testing.T) {
	q := queue_memory.NewQueue(10)
	connections := &countingConnectionSink{updates: make(chan string, 10)}
	d := NewDispatcher(&fakeMessageSink{}, &fakeContactSink{}, connections, &fakeQRSink{}, nil, zap.NewNop())

	pool := NewPool(q, d, zap.NewNop(), 2)
	pool.Start(context.Background())
	defer pool.Stop()

	err := q.Enqueue(context.Background(), queue.Event{
		ID:       "1",
		Instance: "sales-bot",
		Type:     EventConnectionUpdate,
		Data:     json.RawMessage(`{"state":"open"}`),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case status := <-connections.updates:
		if status != "open" {
			t.Errorf("status = %q, want open", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("evento não foi processado pela pool")
	}
}

func TestPoolStopIsClean(t *testing.T) {
	q := queue_memory.NewQueue(10)
	d := NewDispatcher(&fakeMessageSink{}, &fakeContactSink{}, &fakeConnectionSink{}, &fakeQRSink{}, nil, zap.NewNop())

	pool := NewPool(q, d, zap.NewNop(), 4)
	pool.Start(context.Background())

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop não retornou, workers travados")
	}
}
