package webhook

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/pkg/queue"
)

// Pool drena a fila de callbacks e entrega cada evento ao dispatcher.
// Os workers consomem a fila diretamente; realocação de mídia demorada em
// um worker não atrasa o ack HTTP nem os demais workers.
type Pool struct {
	queue      queue.Queue
	dispatcher *Dispatcher
	log        *zap.Logger

	numWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewPool(q queue.Queue, dispatcher *Dispatcher, log *zap.Logger, numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	return &Pool{
		queue:      q,
		dispatcher: dispatcher,
		log:        log,
		numWorkers: numWorkers,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.log.Info("webhook pool: iniciando", zap.Int("workers", p.numWorkers))

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
}

func (p *Pool) Stop() {
	p.log.Info("webhook pool: encerrando")
	p.cancel()
	p.wg.Wait()
	p.log.Info("webhook pool: encerrada")
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	p.log.Debug("webhook pool: worker iniciado", zap.Int("workerId", id))

	for {
		select {
		case <-p.ctx.Done():
			p.log.Debug("webhook pool: worker encerrando", zap.Int("workerId", id))
			return
		default:
			event, err := p.queue.Dequeue(p.ctx, 1*time.Second)
			if err != nil {
				if p.ctx.Err() != nil {
					return
				}
				p.log.Error("webhook pool: erro ao desenfileirar",
					zap.Int("workerId", id),
					zap.Error(err),
				)
				continue
			}
			if event == nil {
				continue
			}

			p.dispatcher.Dispatch(p.ctx, &Callback{
				Event:    event.Type,
				Instance: event.Instance,
				Data:     event.Data,
			})
		}
	}
}
