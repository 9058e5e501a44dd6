// Package instance orquestra o ciclo de vida das sessões na Evolution:
// conectar uma vez só, configurar, assinar webhook e desmontar.
package instance

import (
	"context"
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/provider"
	"github.com/flowcore-ai/flowcore/internal/storage"
	"github.com/flowcore-ai/flowcore/internal/storage/model"
)

// Provider é o recorte da Evolution que o orquestrador usa. Implementado
// por provider.Client; os testes usam um fake.
type Provider interface {
	FetchInstances(ctx context.Context) ([]provider.Instance, error)
	CreateInstance(ctx context.Context, req provider.CreateInstanceRequest) (*provider.CreateInstanceResponse, error)
	Connect(ctx context.Context, name, number string) (*provider.ConnectResponse, error)
	ConnectionState(ctx context.Context, name string) (*provider.ConnectionStateResponse, error)
	SetSettings(ctx context.Context, name string, settings provider.Settings) error
	SetWebhook(ctx context.Context, name string, webhook provider.WebhookConfig) error
	SendText(ctx context.Context, name string, req provider.SendTextRequest) (*provider.SendResponse, error)
	SendMedia(ctx context.Context, name string, req provider.SendMediaRequest) (*provider.SendResponse, error)
	FindContacts(ctx context.Context, name string) ([]provider.Contact, error)
	FindChats(ctx context.Context, name string) ([]provider.Chat, error)
	FindMessages(ctx context.Context, name, remoteJID string) ([]provider.Message, error)
	Logout(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// Eventos que este serviço assina na provider. QR e estado chegam por
// webhook; o resto a gente busca sob demanda.
var webhookEvents = []string{"MESSAGES_UPSERT", "CONNECTION_UPDATE", "QRCODE_UPDATED"}

type Service struct {
	provider   Provider
	messages   storage.MessageRepository
	contacts   storage.ContactRepository
	chats      storage.ChatRepository
	state      storage.StateRepository
	webhookURL string
	settings   provider.Settings
	log        *zap.Logger
}

type Options struct {
	Provider   Provider
	Messages   storage.MessageRepository
	Contacts   storage.ContactRepository
	Chats      storage.ChatRepository
	State      storage.StateRepository
	WebhookURL string
	Settings   provider.Settings
	Logger     *zap.Logger
}

func NewService(opts Options) *Service {
	return &Service{
		provider:   opts.Provider,
		messages:   opts.Messages,
		contacts:   opts.Contacts,
		chats:      opts.Chats,
		state:      opts.State,
		webhookURL: opts.WebhookURL,
		settings:   opts.Settings,
		log:        opts.Logger,
	}
}

type ConnectResult struct {
	QRCode       string `json:"qrcode,omitempty"`
	Status       string `json:"status"`
	InstanceName string `json:"instanceName"`
}

// Connect é idempotente e reentrante: sempre recomeça pela checagem de
// existência, então um crash no meio da sequência deixa a instância
// reconectável, nunca duplicada.
func (s *Service) Connect(ctx context.Context, name, number string) (*ConnectResult, error) {
	if s.instanceExists(ctx, name) {
		s.log.Info("instância já existe, reconectando", zap.String("instance", name))
		conn, err := s.provider.Connect(ctx, name, number)
		if err != nil {
			return nil, err
		}
		return s.connectResult(name, conn), nil
	}

	s.log.Info("criando instância", zap.String("instance", name))

	// QR só no connect; pedir na criação gera um código que expira antes
	// dos settings serem aplicados.
	if _, err := s.provider.CreateInstance(ctx, provider.CreateInstanceRequest{
		InstanceName: name,
		Number:       number,
		QRCode:       false,
		Integration:  provider.IntegrationBaileys,
	}); err != nil {
		return nil, err
	}

	// Best-effort: sem settings a instância funciona degradada, não
	// justifica abortar o connect.
	if err := s.provider.SetSettings(ctx, name, s.settings); err != nil {
		s.log.Warn("falha ao aplicar settings, instância segue sem configuração",
			zap.String("instance", name),
			zap.Error(err),
		)
	}

	conn, err := s.provider.Connect(ctx, name, number)
	if err != nil {
		return nil, err
	}

	// Também best-effort; sem a assinatura o pipeline de webhook fica
	// mudo, mas envio e consulta continuam funcionando.
	if err := s.provider.SetWebhook(ctx, name, provider.WebhookConfig{
		Enabled: true,
		URL:     s.webhookURL,
		Events:  webhookEvents,
	}); err != nil {
		s.log.Warn("falha ao registrar webhook",
			zap.String("instance", name),
			zap.String("url", s.webhookURL),
			zap.Error(err),
		)
	}

	return s.connectResult(name, conn), nil
}

// instanceExists compara o nome exato (case-sensitive) contra a listagem.
// Falha na listagem degrada para "não existe": o caminho de criação é
// seguro porque a provider rejeita duplicata.
func (s *Service) instanceExists(ctx context.Context, name string) bool {
	instances, err := s.provider.FetchInstances(ctx)
	if err != nil {
		s.log.Warn("falha ao listar instâncias, assumindo instância nova", zap.Error(err))
		return false
	}
	for _, inst := range instances {
		if inst.DisplayName() == name {
			return true
		}
	}
	return false
}

func (s *Service) connectResult(name string, conn *provider.ConnectResponse) *ConnectResult {
	qr := conn.Base64
	if qr == "" && conn.Code != "" {
		// A provider às vezes devolve só o código cru; renderizamos o
		// PNG aqui para a UI sempre receber imagem escaneável.
		if png, err := qrcode.Encode(conn.Code, qrcode.Medium, 256); err == nil {
			qr = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		} else {
			s.log.Warn("falha ao renderizar qr code local", zap.String("instance", name), zap.Error(err))
		}
	}

	status := ""
	if conn.Instance != nil {
		status = conn.Instance.State
	}
	if status == "" {
		status = model.ConnectionQRCode
	}

	return &ConnectResult{
		QRCode:       qr,
		Status:       status,
		InstanceName: name,
	}
}

type StatusResult struct {
	Status       string `json:"status"`
	InstanceName string `json:"instanceName"`
}

// Status nunca falha para o caller: a UI consulta em loop e um erro
// transitório da provider não pode derrubar o polling.
func (s *Service) Status(ctx context.Context, name string) *StatusResult {
	state, err := s.provider.ConnectionState(ctx, name)
	if err != nil {
		s.log.Warn("falha ao consultar estado, retornando unknown",
			zap.String("instance", name),
			zap.Error(err),
		)
		return &StatusResult{Status: model.ConnectionUnknown, InstanceName: name}
	}

	result := &StatusResult{Status: state.State(), InstanceName: state.Instance.InstanceName}
	if result.Status == "" {
		result.Status = model.ConnectionUnknown
	}
	if result.InstanceName == "" {
		result.InstanceName = name
	}
	return result
}

// Disconnect executa logout, delete e limpeza das linhas persistidas.
// Contrato de forced success: desmontar é terminal e idempotente do ponto
// de vista do consumidor, então falha da provider vira log, nunca erro —
// um 404 de sessão já encerrada não é acionável por quem chamou.
func (s *Service) Disconnect(ctx context.Context, name string) {
	if err := s.provider.Logout(ctx, name); err != nil {
		s.log.Warn("logout na provider falhou, seguindo com o teardown",
			zap.String("instance", name),
			zap.Error(err),
		)
	}

	if err := s.provider.Delete(ctx, name); err != nil {
		s.log.Warn("delete na provider falhou, seguindo com o teardown",
			zap.String("instance", name),
			zap.Error(err),
		)
	}

	cleanups := []struct {
		what string
		fn   func(context.Context, string) error
	}{
		{"messages", s.messages.DeleteByInstance},
		{"chats", s.chats.DeleteByInstance},
		{"contacts", s.contacts.DeleteByInstance},
		{"state", s.state.DeleteByInstance},
	}
	for _, cleanup := range cleanups {
		if err := cleanup.fn(ctx, name); err != nil {
			s.log.Warn("falha ao limpar dados da instância",
				zap.String("instance", name),
				zap.String("data", cleanup.what),
				zap.Error(err),
			)
		}
	}

	s.log.Info("instância desconectada", zap.String("instance", name))
}

type SendResult struct {
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Service) SendText(ctx context.Context, name, number, text, quotedID string) (*SendResult, error) {
	req := provider.SendTextRequest{
		Number: onlyDigits(number),
		Text:   text,
	}
	if quotedID != "" {
		req.Quoted = &provider.Quoted{Key: provider.MessageKey{ID: quotedID}}
	}

	resp, err := s.provider.SendText(ctx, name, req)
	if err != nil {
		return nil, err
	}
	return &SendResult{MessageID: resp.Key.ID, Timestamp: resp.MessageTimestamp}, nil
}

func (s *Service) SendMedia(ctx context.Context, name, number, mediaURL, caption, mediaType string) (*SendResult, error) {
	if mediaType == "" {
		mediaType = "image"
	}

	resp, err := s.provider.SendMedia(ctx, name, provider.SendMediaRequest{
		Number:    onlyDigits(number),
		MediaType: mediaType,
		Media:     mediaURL,
		Caption:   caption,
	})
	if err != nil {
		return nil, err
	}
	return &SendResult{MessageID: resp.Key.ID, Timestamp: resp.MessageTimestamp}, nil
}

type ContactView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Number        string `json:"number"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
}

// Contacts degrada para lista vazia em falha da provider: alimenta a UI,
// que prefere tela vazia a erro.
func (s *Service) Contacts(ctx context.Context, name string) []ContactView {
	contacts, err := s.provider.FindContacts(ctx, name)
	if err != nil {
		s.log.Warn("falha ao buscar contatos, retornando lista vazia",
			zap.String("instance", name),
			zap.Error(err),
		)
		return []ContactView{}
	}

	views := make([]ContactView, 0, len(contacts))
	for _, contact := range contacts {
		jid := contact.JID()
		display := contact.PushName
		if display == "" {
			display = jidUser(jid)
		}
		views = append(views, ContactView{
			ID:            jid,
			Name:          display,
			Number:        jidUser(jid),
			ProfilePicURL: contact.ProfilePicURL,
		})
	}
	return views
}

type MessageView struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	FromMe      bool   `json:"fromMe"`
	Text        string `json:"text,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	MessageType string `json:"messageType"`
}

func (s *Service) Messages(ctx context.Context, name, chatID string) ([]MessageView, error) {
	messages, err := s.provider.FindMessages(ctx, name, chatID)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, MessageView{
			ID:          msg.Key.ID,
			From:        msg.Key.RemoteJID,
			FromMe:      msg.Key.FromMe,
			Text:        contentText(msg.Message),
			MediaURL:    contentString(msg.Message, "mediaUrl"),
			Caption:     contentCaption(msg.Message),
			Timestamp:   msg.MessageTimestamp,
			MessageType: msg.MessageType,
		})
	}
	return views, nil
}

type ChatView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ProfilePicURL   string `json:"profilePicUrl,omitempty"`
	LastMessage     string `json:"lastMessage,omitempty"`
	LastMessageTime int64  `json:"lastMessageTime,omitempty"`
	UnreadCount     int    `json:"unreadCount"`
}

func (s *Service) Chats(ctx context.Context, name string) ([]ChatView, error) {
	chats, err := s.provider.FindChats(ctx, name)
	if err != nil {
		return nil, err
	}

	views := make([]ChatView, 0, len(chats))
	for _, chat := range chats {
		jid := chat.JID()
		display := chat.Name
		if display == "" {
			display = jidUser(jid)
		}
		view := ChatView{
			ID:            jid,
			Name:          display,
			ProfilePicURL: chat.ProfilePicURL,
			UnreadCount:   chat.UnreadCount,
		}
		if chat.LastMessage != nil {
			view.LastMessage = contentText(chat.LastMessage.Message)
			view.LastMessageTime = chat.LastMessage.MessageTimestamp
		}
		views = append(views, view)
	}
	return views, nil
}

func onlyDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func jidUser(jid string) string {
	if i := strings.Index(jid, "@"); i >= 0 {
		return jid[:i]
	}
	return jid
}

func contentText(content map[string]any) string {
	if text, ok := content["conversation"].(string); ok && text != "" {
		return text
	}
	if ext, ok := content["extendedTextMessage"].(map[string]any); ok {
		if text, ok := ext["text"].(string); ok {
			return text
		}
	}
	return ""
}

func contentCaption(content map[string]any) string {
	for _, key := range []string{"imageMessage", "videoMessage"} {
		if media, ok := content[key].(map[string]any); ok {
			if caption, ok := media["caption"].(string); ok && caption != "" {
				return caption
			}
		}
	}
	return ""
}

func contentString(content map[string]any, key string) string {
	value, _ := content[key].(string)
	return value
}
