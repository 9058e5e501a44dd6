package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

type StateRepository struct {
	rdb *redis.Client
}

func NewStateRepository(client *Client) *StateRepository {
	return &StateRepository{rdb: client.RDB()}
}

func stateKey(instance string) string {
	return "wa:state:" + instance
}

func (r *StateRepository) SetConnection(ctx context.Context, state model.ConnectionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}
	if err := r.rdb.Set(ctx, stateKey(state.InstanceID), data, 0).Err(); err != nil {
		return fmt.Errorf("state: set: %w", err)
	}
	return nil
}

func (r *StateRepository) GetConnection(ctx context.Context, instance string) (model.ConnectionState, error) {
	data, err := r.rdb.Get(ctx, stateKey(instance)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ConnectionState{}, model.ErrNotFound
		}
		return model.ConnectionState{}, fmt.Errorf("state: get: %w", err)
	}

	var state model.ConnectionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return model.ConnectionState{}, fmt.Errorf("state: unmarshal: %w", err)
	}
	return state, nil
}

func (r *StateRepository) DeleteByInstance(ctx context.Context, instance string) error {
	if err := r.rdb.Del(ctx, stateKey(instance)).Err(); err != nil {
		return fmt.Errorf("state: delete: %w", err)
	}
	return nil
}
