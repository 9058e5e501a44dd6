package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Event é um callback da Evolution aguardando processamento. Data carrega o
// payload bruto; quem normaliza é o dispatcher, não a fila.
type Event struct {
	ID         string          `json:"id"`
	Instance   string          `json:"instance"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

type Queue interface {
	Enqueue(ctx context.Context, event Event) error
	Dequeue(ctx context.Context, timeout time.Duration) (*Event, error)
	Size(ctx context.Context) (int64, error)
	Close() error
}
