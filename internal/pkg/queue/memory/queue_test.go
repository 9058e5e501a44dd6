package memory

import (
	"context"
	"testing"
	"time"

	"github.com/flowcore-ai/flowcore/internal/pkg/queue"
)

func TestEnqueueDequeue(t *testing.T) {
	q := NewQueue(10)
	ctx := context.Background()

	if err := q.Enqueue(ctx, queue.Event{ID: "1", Type: "messages.upsert"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	event, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if event == nil || event.ID != "1" {
		t.Errorf("event = %+v", event)
	}
}

func TestDequeueTimeoutReturnsNil(t *testing.T) {
	q := NewQueue(10)

	event, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if event != nil {
		t.Errorf("event = %+v, want nil no timeout", event)
	}
}

func TestEnqueueFullQueue(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, queue.Event{ID: "1"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, queue.Event{ID: "2"}); err == nil {
		t.Error("fila cheia deveria recusar")
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	q := NewQueue(10)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := q.Enqueue(context.Background(), queue.Event{ID: "1"}); err == nil {
		t.Error("fila fechada deveria recusar")
	}
	// Close repetido não pode dar panic.
	if err := q.Close(); err != nil {
		t.Fatalf("segundo Close: %v", err)
	}
}

func TestSize(t *testing.T) {
	q := NewQueue(10)
	ctx := context.Background()

	q.Enqueue(ctx, queue.Event{ID: "1"})
	q.Enqueue(ctx, queue.Event{ID: "2"})

	size, err := q.Size(ctx)
	if err != nil || size != 2 {
		t.Errorf("Size = %d err=%v, want 2", size, err)
	}
}
