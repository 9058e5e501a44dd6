package storage

import (
	"context"

	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

var ErrNotFound = model.ErrNotFound

// Os repositórios guardam o que o pipeline de webhook ingere. A chave de
// tudo é o nome da instância, para o disconnect conseguir limpar em bloco.

type MessageRepository interface {
	Save(ctx context.Context, msg model.Message) error
	ListByChat(ctx context.Context, instance, chatJID string) ([]model.Message, error)
	DeleteByInstance(ctx context.Context, instance string) error
}

type ContactRepository interface {
	Upsert(ctx context.Context, contact model.Contact) error
	ListByInstance(ctx context.Context, instance string) ([]model.Contact, error)
	DeleteByInstance(ctx context.Context, instance string) error
}

// ChatRepository mantém o índice de conversas tocadas por mensagens
// ingeridas; não guarda metadados, só o conjunto de JIDs.
type ChatRepository interface {
	Touch(ctx context.Context, instance, chatJID string) error
	ListByInstance(ctx context.Context, instance string) ([]string, error)
	DeleteByInstance(ctx context.Context, instance string) error
}

// StateRepository guarda o último estado de conexão observado via webhook.
// Quem escreve é só o sink de connection.update.
type StateRepository interface {
	SetConnection(ctx context.Context, state model.ConnectionState) error
	GetConnection(ctx context.Context, instance string) (model.ConnectionState, error)
	DeleteByInstance(ctx context.Context, instance string) error
}
