package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowcore-ai/flowcore/internal/config"
	"github.com/flowcore-ai/flowcore/internal/provider"
)

type HealthHandler struct {
	provider *provider.Client
}

func NewHealthHandler(p *provider.Client) *HealthHandler {
	return &HealthHandler{provider: p}
}

func (h *HealthHandler) Register(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		// Checagem rasa do upstream: reporta, não derruba o health.
		evolution := "ok"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if _, err := h.provider.FetchInstances(ctx); err != nil {
			evolution = "unreachable"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   config.Version,
			"name":      "flowcore",
			"evolution": evolution,
		})
	})
}
