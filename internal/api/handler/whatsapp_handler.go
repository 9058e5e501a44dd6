package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/pkg/response"
	"github.com/flowcore-ai/flowcore/internal/provider"
	"github.com/flowcore-ai/flowcore/internal/qr"
	"github.com/flowcore-ai/flowcore/internal/service/instance"
)

type WhatsAppHandler struct {
	instances *instance.Service
	qrHub     *qr.Hub
	log       *zap.Logger
}

func NewWhatsAppHandler(instances *instance.Service, qrHub *qr.Hub, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{instances: instances, qrHub: qrHub, log: log}
}

func (h *WhatsAppHandler) Register(r *gin.RouterGroup) {
	r.POST("/connect", h.connect)
	r.GET("/status/:instanceName", h.status)
	r.GET("/qr/:instanceName", h.streamQR)
	r.GET("/contacts/:instanceName", h.contacts)
	r.GET("/chats/:instanceName", h.chats)
	r.GET("/messages/:instanceName", h.messages)
	r.POST("/send-text/:instanceName", h.sendText)
	r.POST("/send-media/:instanceName", h.sendMedia)
	r.DELETE("/disconnect/:instanceName", h.disconnect)
}

type connectRequest struct {
	InstanceName string `json:"instanceName" binding:"required"`
	Number       string `json:"number"`
}

func (h *WhatsAppHandler) connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "instanceName é obrigatório")
		return
	}

	result, err := h.instances.Connect(c.Request.Context(), req.InstanceName, req.Number)
	if err != nil {
		h.providerError(c, "connect", req.InstanceName, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *WhatsAppHandler) status(c *gin.Context) {
	name := c.Param("instanceName")
	response.Success(c, http.StatusOK, h.instances.Status(c.Request.Context(), name))
}

// streamQR entrega as atualizações de QR da instância via SSE. O primeiro
// QR só chega depois de um connect; o stream serve para a UI trocar o
// código quando ele expira sem fazer polling.
func (h *WhatsAppHandler) streamQR(c *gin.Context) {
	name := c.Param("instanceName")

	updates, cancel := h.qrHub.Subscribe(name)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("qrcode", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *WhatsAppHandler) contacts(c *gin.Context) {
	name := c.Param("instanceName")
	response.Success(c, http.StatusOK, h.instances.Contacts(c.Request.Context(), name))
}

func (h *WhatsAppHandler) chats(c *gin.Context) {
	name := c.Param("instanceName")
	chats, err := h.instances.Chats(c.Request.Context(), name)
	if err != nil {
		h.providerError(c, "chats", name, err)
		return
	}
	response.Success(c, http.StatusOK, chats)
}

func (h *WhatsAppHandler) messages(c *gin.Context) {
	name := c.Param("instanceName")
	chatID := c.Query("chatId")
	if chatID == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "chatId é obrigatório")
		return
	}

	messages, err := h.instances.Messages(c.Request.Context(), name, chatID)
	if err != nil {
		h.providerError(c, "messages", name, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

type sendTextRequest struct {
	Number   string `json:"number" binding:"required"`
	Text     string `json:"text" binding:"required"`
	QuotedID string `json:"quotedId"`
}

func (h *WhatsAppHandler) sendText(c *gin.Context) {
	name := c.Param("instanceName")

	var req sendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "number e text são obrigatórios")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "text não pode ser vazio")
		return
	}

	result, err := h.instances.SendText(c.Request.Context(), name, req.Number, req.Text, req.QuotedID)
	if err != nil {
		h.providerError(c, "send-text", name, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

type sendMediaRequest struct {
	Number    string `json:"number" binding:"required"`
	MediaURL  string `json:"mediaUrl" binding:"required"`
	Caption   string `json:"caption"`
	MediaType string `json:"mediaType"`
}

func (h *WhatsAppHandler) sendMedia(c *gin.Context) {
	name := c.Param("instanceName")

	var req sendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "number e mediaUrl são obrigatórios")
		return
	}

	result, err := h.instances.SendMedia(c.Request.Context(), name, req.Number, req.MediaURL, req.Caption, req.MediaType)
	if err != nil {
		h.providerError(c, "send-media", name, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// disconnect sempre responde sucesso: o serviço absorve qualquer falha do
// teardown e o recurso termina desmontado do ponto de vista do cliente.
func (h *WhatsAppHandler) disconnect(c *gin.Context) {
	name := c.Param("instanceName")
	h.instances.Disconnect(c.Request.Context(), name)
	response.Success(c, http.StatusOK, gin.H{"instanceName": name, "disconnected": true})
}

func (h *WhatsAppHandler) providerError(c *gin.Context, op, name string, err error) {
	h.log.Error("falha na operação",
		zap.String("op", op),
		zap.String("instance", name),
		zap.Error(err),
	)

	if perr, ok := provider.As(err); ok {
		response.Error(c, http.StatusInternalServerError, "PROVIDER_ERROR", perr.Message)
		return
	}
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno ao processar a requisição")
}
