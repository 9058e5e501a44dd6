// Package qr distribui atualizações de QR code para assinantes ao vivo.
// Nada aqui é persistido: quem perdeu a atualização espera a próxima.
package qr

import (
	"encoding/json"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

type subscriber struct {
	instance string
	ch       chan json.RawMessage
}

type Hub struct {
	subs *xsync.Map[uint64, *subscriber]
	seq  atomic.Uint64
	log  *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: xsync.NewMap[uint64, *subscriber](),
		log:  log,
	}
}

// Publish entrega o payload para todo assinante da instância. Assinante
// lento perde a atualização em vez de travar o publisher.
func (h *Hub) Publish(instance string, payload json.RawMessage) {
	delivered := 0
	h.subs.Range(func(_ uint64, sub *subscriber) bool {
		if sub.instance != instance {
			return true
		}
		select {
		case sub.ch <- payload:
			delivered++
		default:
		}
		return true
	})

	h.log.Debug("qr hub: atualização publicada",
		zap.String("instance", instance),
		zap.Int("subscribers", delivered),
	)
}

// Subscribe registra um assinante e devolve o canal mais a função de
// cancelamento. O caller é obrigado a chamar cancel.
func (h *Hub) Subscribe(instance string) (<-chan json.RawMessage, func()) {
	id := h.seq.Add(1)
	sub := &subscriber{instance: instance, ch: make(chan json.RawMessage, 4)}
	h.subs.Store(id, sub)

	cancel := func() {
		h.subs.Delete(id)
	}
	return sub.ch, cancel
}
