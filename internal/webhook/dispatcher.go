package webhook

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/provider"
)

// Sinks são declarados aqui, do lado consumidor; as implementações vivem
// em ingest (persistência) e qr (canal ao vivo).

type MessageSink interface {
	IngestMessage(ctx context.Context, instance string, msg *provider.Message) error
}

type ContactSink interface {
	UpsertContact(ctx context.Context, instance string, contact provider.Contact) error
}

type ConnectionSink interface {
	UpdateConnection(ctx context.Context, instance, status, reason string) error
}

type QRSink interface {
	Publish(instance string, payload json.RawMessage)
}

type Relocator interface {
	Relocate(ctx context.Context, sourceURL, correlationID, mimeType string) (string, error)
}

// Tipos de mensagem cuja mídia é realocada antes da ingestão.
var mediaMessageTypes = map[string]bool{
	"imageMessage":    true,
	"videoMessage":    true,
	"audioMessage":    true,
	"documentMessage": true,
}

type Dispatcher struct {
	messages    MessageSink
	contacts    ContactSink
	connections ConnectionSink
	qr          QRSink
	relocator   Relocator
	log         *zap.Logger
}

func NewDispatcher(messages MessageSink, contacts ContactSink, connections ConnectionSink, qr QRSink, relocator Relocator, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		messages:    messages,
		contacts:    contacts,
		connections: connections,
		qr:          qr,
		relocator:   relocator,
		log:         log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, cb *Callback) {
	d.log.Debug("[dispatcher] processando evento",
		zap.String("event", cb.Event),
		zap.String("instance", cb.Instance),
	)

	switch cb.Event {
	case EventMessagesUpsert:
		d.handleMessage(ctx, cb)
	case EventContactsUpsert:
		d.handleContacts(ctx, cb)
	case EventQRCodeUpdated:
		d.qr.Publish(cb.Instance, cb.Data)
		d.log.Debug("[dispatcher] qr code atualizado", zap.String("instance", cb.Instance))
	case EventConnectionUpdate:
		d.handleConnection(ctx, cb)
	default:
		// Tag nova da provider: aceitar e seguir em frente.
		d.log.Info("[dispatcher] evento desconhecido ignorado",
			zap.String("event", cb.Event),
			zap.String("instance", cb.Instance),
		)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, cb *Callback) {
	msg, err := normalizeMessage(cb.Data)
	if err != nil {
		d.log.Warn("[dispatcher] payload de messages.upsert inválido",
			zap.String("instance", cb.Instance),
			zap.Error(err),
		)
		return
	}

	mtype := messageType(msg.Message)

	if !msg.Key.FromMe && mediaMessageTypes[mtype] {
		d.relocateMedia(ctx, cb.Instance, msg, mtype)
	}

	if err := d.messages.IngestMessage(ctx, cb.Instance, msg); err != nil {
		d.log.Error("[dispatcher] falha ao ingerir mensagem",
			zap.String("instance", cb.Instance),
			zap.String("msg_id", msg.Key.ID),
			zap.Error(err),
		)
	}
}

// relocateMedia é advisory: em caso de falha a mensagem segue intacta,
// sem mediaUrl, e nada é propagado para o caller.
func (d *Dispatcher) relocateMedia(ctx context.Context, instance string, msg *provider.Message, mtype string) {
	if d.relocator == nil {
		d.log.Warn("[dispatcher] storage de mídia desabilitado, mensagem segue sem realocação",
			zap.String("msg_id", msg.Key.ID),
		)
		return
	}

	content, ok := msg.Message[mtype].(map[string]any)
	if !ok {
		return
	}
	sourceURL, _ := content["url"].(string)
	if sourceURL == "" {
		return
	}
	mimeType, _ := content["mimetype"].(string)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	publicURL, err := d.relocator.Relocate(ctx, sourceURL, msg.Key.ID, mimeType)
	if err != nil {
		d.log.Error("[dispatcher] falha ao realocar mídia",
			zap.String("instance", instance),
			zap.String("msg_id", msg.Key.ID),
			zap.String("type", mtype),
			zap.Error(err),
		)
		return
	}

	// O campo vai junto no mesmo write da mensagem, então a persistência
	// captura a mídia durável de uma vez.
	msg.Message["mediaUrl"] = publicURL
}

func (d *Dispatcher) handleContacts(ctx context.Context, cb *Callback) {
	contacts, err := normalizeContacts(cb.Data)
	if err != nil {
		d.log.Warn("[dispatcher] payload de contacts.upsert inválido",
			zap.String("instance", cb.Instance),
			zap.Error(err),
		)
		return
	}

	for _, contact := range contacts {
		if err := d.contacts.UpsertContact(ctx, cb.Instance, contact); err != nil {
			d.log.Warn("[dispatcher] falha ao sincronizar contato",
				zap.String("instance", cb.Instance),
				zap.String("jid", contact.JID()),
				zap.Error(err),
			)
		}
	}
	d.log.Debug("[dispatcher] contatos sincronizados",
		zap.String("instance", cb.Instance),
		zap.Int("count", len(contacts)),
	)
}

func (d *Dispatcher) handleConnection(ctx context.Context, cb *Callback) {
	update, err := normalizeConnection(cb.Data)
	if err != nil {
		d.log.Warn("[dispatcher] payload de connection.update inválido",
			zap.String("instance", cb.Instance),
			zap.Error(err),
		)
		return
	}

	if err := d.connections.UpdateConnection(ctx, cb.Instance, update.Status, update.Reason); err != nil {
		d.log.Warn("[dispatcher] falha ao registrar estado de conexão",
			zap.String("instance", cb.Instance),
			zap.Error(err),
		)
		return
	}
	d.log.Info("[dispatcher] estado de conexão atualizado",
		zap.String("instance", cb.Instance),
		zap.String("status", update.Status),
		zap.String("reason", update.Reason),
	)
}
