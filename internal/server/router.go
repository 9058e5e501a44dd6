package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flowcore-ai/flowcore/internal/api/handler"
	"github.com/flowcore-ai/flowcore/internal/api/middleware"
)

type Options struct {
	Env             string
	APIKey          string
	WhatsAppHandler *handler.WhatsAppHandler
	WebhookHandler  *handler.WebhookHandler
	HealthHandler   *handler.HealthHandler
	Proxy           gin.HandlerFunc
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "apikey", middleware.HeaderRequestID},
		MaxAge:       12 * time.Hour,
	}))

	root := router.Group("")

	// Health e webhook ficam fora da autenticação: a Evolution não manda
	// a nossa chave nos callbacks.
	opts.HealthHandler.Register(root)
	opts.WebhookHandler.Register(root)

	api := router.Group("/api/whatsapp")
	api.Use(middleware.Auth(opts.APIKey))
	opts.WhatsAppHandler.Register(api)

	// Qualquer rota fora do gateway cai no proxy para a Evolution.
	if opts.Proxy != nil {
		router.NoRoute(opts.Proxy)
	}

	return router
}
