package model

import (
	"errors"
	"time"
)

// ErrNotFound mora aqui (pacote folha) para evitar ciclo de import entre
// storage e suas implementações; storage.ErrNotFound é um alias deste valor.
var ErrNotFound = errors.New("not found")

// Estados de conexão reportados pela Evolution via webhook.
const (
	ConnectionUnknown    = "unknown"
	ConnectionQRCode     = "qrcode"
	ConnectionConnecting = "connecting"
	ConnectionOpen       = "open"
	ConnectionClose      = "close"
)

type Message struct {
	ID         string         `json:"id"`
	InstanceID string         `json:"instanceId"`
	ChatJID    string         `json:"chatJid"`
	FromMe     bool           `json:"fromMe"`
	PushName   string         `json:"pushName,omitempty"`
	Type       string         `json:"type"`
	Content    map[string]any `json:"content"`
	MediaURL   string         `json:"mediaUrl,omitempty"`
	Timestamp  int64          `json:"timestamp"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

type Contact struct {
	InstanceID    string    `json:"instanceId"`
	RemoteJID     string    `json:"remoteJid"`
	PushName      string    `json:"pushName,omitempty"`
	ProfilePicURL string    `json:"profilePicUrl,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ConnectionState struct {
	InstanceID string    `json:"instanceId"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
