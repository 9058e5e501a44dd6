package webhook

import (
	"encoding/json"
	"errors"

	"github.com/flowcore-ai/flowcore/internal/provider"
)

// A Evolution alterna entre payload puro e payload embrulhado em {data:...}
// dependendo da versão e do evento. As funções deste arquivo devolvem a
// variante canônica; nenhum handler faz esse if por conta própria.

var errEmptyPayload = errors.New("webhook: payload vazio")

// normalizeMessage aceita tanto {data: msg} quanto a msg pura.
func normalizeMessage(raw json.RawMessage) (*provider.Message, error) {
	if len(raw) == 0 {
		return nil, errEmptyPayload
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Data) > 0 && wrapper.Data[0] == '{' {
		raw = wrapper.Data
	}

	var msg provider.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Key.ID == "" && len(msg.Message) == 0 {
		return nil, errors.New("webhook: payload não parece uma mensagem")
	}
	return &msg, nil
}

// normalizeContacts aceita tanto a sequência pura quanto {data: [...]}.
func normalizeContacts(raw json.RawMessage) ([]provider.Contact, error) {
	if len(raw) == 0 {
		return nil, errEmptyPayload
	}

	var list []provider.Contact
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []provider.Contact `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

type ConnectionUpdate struct {
	Status string
	Reason string
}

// normalizeConnection aceita {state}/{status} e {statusReason}/{reason}.
func normalizeConnection(raw json.RawMessage) (ConnectionUpdate, error) {
	var shape struct {
		State        string          `json:"state"`
		Status       string          `json:"status"`
		Reason       json.RawMessage `json:"reason"`
		StatusReason json.RawMessage `json:"statusReason"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return ConnectionUpdate{}, err
	}

	update := ConnectionUpdate{Status: shape.State}
	if update.Status == "" {
		update.Status = shape.Status
	}
	update.Reason = reasonToString(shape.Reason)
	if update.Reason == "" {
		update.Reason = reasonToString(shape.StatusReason)
	}
	return update, nil
}

// reason chega como string ou como código numérico, dependendo da versão.
func reasonToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// messageType identifica o tipo pela chave presente no mapa de conteúdo.
// A ordem conhecida vem primeiro porque mapas em Go não são ordenados e o
// conteúdo costuma carregar messageContextInfo junto.
func messageType(content map[string]any) string {
	known := []string{
		"conversation",
		"extendedTextMessage",
		"imageMessage",
		"videoMessage",
		"audioMessage",
		"documentMessage",
		"stickerMessage",
		"locationMessage",
		"contactMessage",
	}
	for _, key := range known {
		if _, ok := content[key]; ok {
			return key
		}
	}
	for key := range content {
		if key != "messageContextInfo" {
			return key
		}
	}
	return ""
}
