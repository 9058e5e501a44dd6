package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/pkg/queue"
	"github.com/flowcore-ai/flowcore/internal/webhook"
)

// WebhookHandler recebe os callbacks da Evolution. Contrato: responder 200
// sempre e rápido — nada de trabalho síncrono aqui; a provider desabilita
// webhooks que falham ou demoram.
type WebhookHandler struct {
	queue queue.Queue
	log   *zap.Logger
}

func NewWebhookHandler(q queue.Queue, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{queue: q, log: log}
}

func (h *WebhookHandler) Register(r *gin.RouterGroup) {
	r.POST("/webhook/evolution", h.receive)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	var cb webhook.Callback
	if err := c.ShouldBindJSON(&cb); err != nil {
		h.log.Warn("webhook: payload ilegível, descartando", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	if cb.Event == "" {
		h.log.Warn("webhook: callback sem evento, descartando",
			zap.String("instance", cb.Instance),
		)
		c.Status(http.StatusOK)
		return
	}

	err := h.queue.Enqueue(c.Request.Context(), queue.Event{
		ID:         uuid.NewString(),
		Instance:   cb.Instance,
		Type:       cb.Event,
		Data:       cb.Data,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		// Fila cheia ou Redis fora: o evento se perde, mas o 200 mantém o
		// webhook ativo na provider.
		h.log.Error("webhook: falha ao enfileirar evento",
			zap.String("event", cb.Event),
			zap.String("instance", cb.Instance),
			zap.Error(err),
		)
	}

	c.Status(http.StatusOK)
}
