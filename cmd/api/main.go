package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/api/handler"
	"github.com/flowcore-ai/flowcore/internal/app"
	"github.com/flowcore-ai/flowcore/internal/config"
	"github.com/flowcore-ai/flowcore/internal/logger"
	"github.com/flowcore-ai/flowcore/internal/media"
	"github.com/flowcore-ai/flowcore/internal/provider"
	"github.com/flowcore-ai/flowcore/internal/proxy"
	"github.com/flowcore-ai/flowcore/internal/qr"
	"github.com/flowcore-ai/flowcore/internal/server"
	"github.com/flowcore-ai/flowcore/internal/service/ingest"
	"github.com/flowcore-ai/flowcore/internal/service/instance"
	"github.com/flowcore-ai/flowcore/internal/storage"
	"github.com/flowcore-ai/flowcore/internal/storage/gcs"
	"github.com/flowcore-ai/flowcore/internal/webhook"
)

func main() {
	cfg := config.Load()

	logr, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	logr.Info("iniciando aplicação",
		zap.String("env", cfg.App.Env),
		zap.String("log_level", cfg.Log.Level),
		zap.String("port", cfg.App.Port),
		zap.String("evolution", cfg.Evolution.BaseURL),
	)

	stores, err := storage.NewStores(cfg, logr)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	evolution := provider.NewClient(cfg.Evolution, logr)

	var gcsStorage *gcs.Storage
	var relocator webhook.Relocator
	if cfg.GCS.Enabled {
		gcsStorage, err = gcs.New(context.Background(), cfg.GCS, logr)
		if err != nil {
			log.Fatalf("gcs: %v", err)
		}
		relocator = media.NewRelocator(gcsStorage, logr)
		logr.Info("realocação de mídia habilitada", zap.String("bucket", cfg.GCS.Bucket))
	} else {
		logr.Info("realocação de mídia desabilitada, mensagens mantêm a URL efêmera")
	}

	qrHub := qr.NewHub(logr)

	logr.Info("inicializando sistema de webhooks")
	ingestService := ingest.NewService(stores.Messages, stores.Contacts, stores.Chats, stores.State, logr)
	dispatcher := webhook.NewDispatcher(ingestService, ingestService, ingestService, qrHub, relocator, logr)
	webhookPool := webhook.NewPool(stores.WebhookQueue, dispatcher, logr, cfg.Webhook.Workers)
	webhookPool.Start(context.Background())
	logr.Info("webhook pool iniciada", zap.Int("workers", cfg.Webhook.Workers))

	instanceService := instance.NewService(instance.Options{
		Provider:   evolution,
		Messages:   stores.Messages,
		Contacts:   stores.Contacts,
		Chats:      stores.Chats,
		State:      stores.State,
		WebhookURL: cfg.App.BaseURL + "/webhook/evolution",
		Settings: provider.Settings{
			RejectCall:      cfg.Instance.RejectCall,
			MsgCall:         cfg.Instance.MsgCall,
			GroupsIgnore:    cfg.Instance.GroupsIgnore,
			AlwaysOnline:    cfg.Instance.AlwaysOnline,
			ReadMessages:    cfg.Instance.ReadMessages,
			ReadStatus:      cfg.Instance.ReadStatus,
			SyncFullHistory: cfg.Instance.SyncFullHistory,
		},
		Logger: logr,
	})

	passthrough, err := proxy.New(cfg.Evolution, logr)
	if err != nil {
		log.Fatalf("proxy: %v", err)
	}

	router := server.NewRouter(server.Options{
		Env:             cfg.App.Env,
		APIKey:          cfg.App.APIKey,
		WhatsAppHandler: handler.NewWhatsAppHandler(instanceService, qrHub, logr),
		WebhookHandler:  handler.NewWebhookHandler(stores.WebhookQueue, logr),
		HealthHandler:   handler.NewHealthHandler(evolution),
		Proxy:           passthrough,
	})

	application := app.New(cfg, logr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := application.Run(context.Background()); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("sinal de encerramento recebido")
	case err := <-errCh:
		logr.Error("servidor finalizado com erro", zap.Error(err))
	}

	logr.Info("iniciando shutdown graceful")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	webhookPool.Stop()

	if gcsStorage != nil {
		if err := gcsStorage.Close(); err != nil {
			logr.Warn("erro ao fechar client GCS", zap.Error(err))
		}
	}

	if stores.RedisClient != nil {
		if err := stores.RedisClient.Close(); err != nil {
			logr.Warn("erro ao fechar conexão Redis", zap.Error(err))
		} else {
			logr.Info("conexão Redis fechada")
		}
	}

	if err := application.Shutdown(shutdownCtx); err != nil {
		logr.Error("erro ao encerrar servidor", zap.Error(err))
	} else {
		logr.Info("servidor encerrado com sucesso")
	}
}
