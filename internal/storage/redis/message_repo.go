package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

// MessageRepository guarda mensagens em um hash por conversa:
// wa:messages:<instance>:<chatJid> -> {msgId: json}.
type MessageRepository struct {
	rdb *redis.Client
}

func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{rdb: client.RDB()}
}

func messagesKey(instance, chatJID string) string {
	return fmt.Sprintf("wa:messages:%s:%s", instance, chatJID)
}

func (r *MessageRepository) Save(ctx context.Context, msg model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("messages: marshal: %w", err)
	}
	if err := r.rdb.HSet(ctx, messagesKey(msg.InstanceID, msg.ChatJID), msg.ID, data).Err(); err != nil {
		return fmt.Errorf("messages: save: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, instance, chatJID string) ([]model.Message, error) {
	entries, err := r.rdb.HGetAll(ctx, messagesKey(instance, chatJID)).Result()
	if err != nil {
		return nil, fmt.Errorf("messages: list: %w", err)
	}

	messages := make([]model.Message, 0, len(entries))
	for _, data := range entries {
		var msg model.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByInstance(ctx context.Context, instance string) error {
	return deleteByPattern(ctx, r.rdb, fmt.Sprintf("wa:messages:%s:*", instance))
}

// deleteByPattern varre e remove todas as chaves do padrão. SCAN em vez de
// KEYS para não travar o servidor em instâncias com muita conversa.
func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	return nil
}
