package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type ChatRepository struct {
	rdb *redis.Client
}

func NewChatRepository(client *Client) *ChatRepository {
	return &ChatRepository{rdb: client.RDB()}
}

func chatsKey(instance string) string {
	return "wa:chats:" + instance
}

func (r *ChatRepository) Touch(ctx context.Context, instance, chatJID string) error {
	if err := r.rdb.SAdd(ctx, chatsKey(instance), chatJID).Err(); err != nil {
		return fmt.Errorf("chats: touch: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListByInstance(ctx context.Context, instance string) ([]string, error) {
	chats, err := r.rdb.SMembers(ctx, chatsKey(instance)).Result()
	if err != nil {
		return nil, fmt.Errorf("chats: list: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) DeleteByInstance(ctx context.Context, instance string) error {
	if err := r.rdb.Del(ctx, chatsKey(instance)).Err(); err != nil {
		return fmt.Errorf("chats: delete: %w", err)
	}
	return nil
}
