// Package ingest liga o dispatcher de webhooks à persistência: mensagens,
// contatos e estado de conexão observado.
package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/provider"
	"github.com/flowcore-ai/flowcore/internal/storage"
	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

type Service struct {
	messages storage.MessageRepository
	contacts storage.ContactRepository
	chats    storage.ChatRepository
	state    storage.StateRepository
	log      *zap.Logger
}

func NewService(
	messages storage.MessageRepository,
	contacts storage.ContactRepository,
	chats storage.ChatRepository,
	state storage.StateRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		messages: messages,
		contacts: contacts,
		chats:    chats,
		state:    state,
		log:      log,
	}
}

// IngestMessage grava a mensagem e marca a conversa no índice de chats.
// Upsert idempotente: redelivery do mesmo evento regrava a mesma linha.
func (s *Service) IngestMessage(ctx context.Context, instance string, msg *provider.Message) error {
	mediaURL, _ := msg.Message["mediaUrl"].(string)

	record := model.Message{
		ID:         msg.Key.ID,
		InstanceID: instance,
		ChatJID:    msg.Key.RemoteJID,
		FromMe:     msg.Key.FromMe,
		PushName:   msg.PushName,
		Type:       msg.MessageType,
		Content:    msg.Message,
		MediaURL:   mediaURL,
		Timestamp:  msg.MessageTimestamp,
		ReceivedAt: time.Now().UTC(),
	}

	if err := s.messages.Save(ctx, record); err != nil {
		return err
	}

	if err := s.chats.Touch(ctx, instance, msg.Key.RemoteJID); err != nil {
		s.log.Warn("ingest: falha ao indexar conversa",
			zap.String("instance", instance),
			zap.String("chat", msg.Key.RemoteJID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Service) UpsertContact(ctx context.Context, instance string, contact provider.Contact) error {
	return s.contacts.Upsert(ctx, model.Contact{
		InstanceID:    instance,
		RemoteJID:     contact.JID(),
		PushName:      contact.PushName,
		ProfilePicURL: contact.ProfilePicURL,
		UpdatedAt:     time.Now().UTC(),
	})
}

func (s *Service) UpdateConnection(ctx context.Context, instance, status, reason string) error {
	return s.state.SetConnection(ctx, model.ConnectionState{
		InstanceID: instance,
		Status:     status,
		Reason:     reason,
		UpdatedAt:  time.Now().UTC(),
	})
}
