// Package memory implementa os repositórios em memória, para testes e
// para deployments sem Redis.
package memory

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

const sep = "\x00"

type MessageRepository struct {
	messages *xsync.Map[string, model.Message]
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{messages: xsync.NewMap[string, model.Message]()}
}

func (r *MessageRepository) Save(ctx context.Context, msg model.Message) error {
	r.messages.Store(msg.InstanceID+sep+msg.ChatJID+sep+msg.ID, msg)
	return nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, instance, chatJID string) ([]model.Message, error) {
	prefix := instance + sep + chatJID + sep
	var result []model.Message
	r.messages.Range(func(key string, msg model.Message) bool {
		if strings.HasPrefix(key, prefix) {
			result = append(result, msg)
		}
		return true
	})
	return result, nil
}

func (r *MessageRepository) DeleteByInstance(ctx context.Context, instance string) error {
	prefix := instance + sep
	r.messages.Range(func(key string, _ model.Message) bool {
		if strings.HasPrefix(key, prefix) {
			r.messages.Delete(key)
		}
		return true
	})
	return nil
}

type ContactRepository struct {
	contacts *xsync.Map[string, model.Contact]
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{contacts: xsync.NewMap[string, model.Contact]()}
}

func (r *ContactRepository) Upsert(ctx context.Context, contact model.Contact) error {
	r.contacts.Store(contact.InstanceID+sep+contact.RemoteJID, contact)
	return nil
}

func (r *ContactRepository) ListByInstance(ctx context.Context, instance string) ([]model.Contact, error) {
	prefix := instance + sep
	var result []model.Contact
	r.contacts.Range(func(key string, contact model.Contact) bool {
		if strings.HasPrefix(key, prefix) {
			result = append(result, contact)
		}
		return true
	})
	return result, nil
}

func (r *ContactRepository) DeleteByInstance(ctx context.Context, instance string) error {
	prefix := instance + sep
	r.contacts.Range(func(key string, _ model.Contact) bool {
		if strings.HasPrefix(key, prefix) {
			r.contacts.Delete(key)
		}
		return true
	})
	return nil
}

type ChatRepository struct {
	chats *xsync.Map[string, struct{}]
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{chats: xsync.NewMap[string, struct{}]()}
}

func (r *ChatRepository) Touch(ctx context.Context, instance, chatJID string) error {
	r.chats.Store(instance+sep+chatJID, struct{}{})
	return nil
}

func (r *ChatRepository) ListByInstance(ctx context.Context, instance string) ([]string, error) {
	prefix := instance + sep
	var result []string
	r.chats.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			result = append(result, strings.TrimPrefix(key, prefix))
		}
		return true
	})
	return result, nil
}

func (r *ChatRepository) DeleteByInstance(ctx context.Context, instance string) error {
	prefix := instance + sep
	r.chats.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			r.chats.Delete(key)
		}
		return true
	})
	return nil
}

type StateRepository struct {
	states *xsync.Map[string, model.ConnectionState]
}

func NewStateRepository() *StateRepository {
	return &StateRepository{states: xsync.NewMap[string, model.ConnectionState]()}
}

func (r *StateRepository) SetConnection(ctx context.Context, state model.ConnectionState) error {
	r.states.Store(state.InstanceID, state)
	return nil
}

func (r *StateRepository) GetConnection(ctx context.Context, instance string) (model.ConnectionState, error) {
	state, ok := r.states.Load(instance)
	if !ok {
		return model.ConnectionState{}, model.ErrNotFound
	}
	return state, nil
}

func (r *StateRepository) DeleteByInstance(ctx context.Context, instance string) error {
	r.states.Delete(instance)
	return nil
}
