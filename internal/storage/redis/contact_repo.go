package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

type ContactRepository struct {
	rdb *redis.Client
}

func NewContactRepository(client *Client) *ContactRepository {
	return &ContactRepository{rdb: client.RDB()}
}

func contactsKey(instance string) string {
	return "wa:contacts:" + instance
}

func (r *ContactRepository) Upsert(ctx context.Context, contact model.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("contacts: marshal: %w", err)
	}
	if err := r.rdb.HSet(ctx, contactsKey(contact.InstanceID), contact.RemoteJID, data).Err(); err != nil {
		return fmt.Errorf("contacts: upsert: %w", err)
	}
	return nil
}

func (r *ContactRepository) ListByInstance(ctx context.Context, instance string) ([]model.Contact, error) {
	entries, err := r.rdb.HGetAll(ctx, contactsKey(instance)).Result()
	if err != nil {
		return nil, fmt.Errorf("contacts: list: %w", err)
	}

	contacts := make([]model.Contact, 0, len(entries))
	for _, data := range entries {
		var contact model.Contact
		if err := json.Unmarshal([]byte(data), &contact); err != nil {
			continue
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (r *ContactRepository) DeleteByInstance(ctx context.Context, instance string) error {
	if err := r.rdb.Del(ctx, contactsKey(instance)).Err(); err != nil {
		return fmt.Errorf("contacts: delete: %w", err)
	}
	return nil
}
