package storage

import (
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/config"
	"github.com/flowcore-ai/flowcore/internal/pkg/queue"
	queue_memory "github.com/flowcore-ai/flowcore/internal/pkg/queue/memory"
	queue_redis "github.com/flowcore-ai/flowcore/internal/pkg/queue/redis"
	storage_memory "github.com/flowcore-ai/flowcore/internal/storage/memory"
	storage_redis "github.com/flowcore-ai/flowcore/internal/storage/redis"
)

type Stores struct {
	Messages     MessageRepository
	Contacts     ContactRepository
	Chats        ChatRepository
	State        StateRepository
	WebhookQueue queue.Queue
	RedisClient  *storage_redis.Client // nil quando Redis está desabilitado
}

func NewStores(cfg config.Config, log *zap.Logger) (*Stores, error) {
	if !cfg.Redis.Enabled {
		log.Info("usando repositórios em memória (Redis desabilitado)")
		return &Stores{
			Messages:     storage_memory.NewMessageRepository(),
			Contacts:     storage_memory.NewContactRepository(),
			Chats:        storage_memory.NewChatRepository(),
			State:        storage_memory.NewStateRepository(),
			WebhookQueue: queue_memory.NewQueue(cfg.Webhook.QueueSize),
		}, nil
	}

	log.Info("inicializando Redis...")
	client, err := storage_redis.New(cfg.Redis, log)
	if err != nil {
		log.Error("erro ao conectar com Redis", zap.Error(err))
		return nil, err
	}

	log.Info("Redis conectado, fila e repositórios configurados")
	return &Stores{
		Messages:     storage_redis.NewMessageRepository(client),
		Contacts:     storage_redis.NewContactRepository(client),
		Chats:        storage_redis.NewChatRepository(client),
		State:        storage_redis.NewStateRepository(client),
		WebhookQueue: queue_redis.NewQueue(client.RDB(), "webhook:events"),
		RedisClient:  client,
	}, nil
}
