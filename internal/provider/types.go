package provider

// IntegrationBaileys é o único tipo de integração que provisionamos hoje.
const IntegrationBaileys = "WHATSAPP-BAILEYS"

// Settings é o snapshot de configuração aplicado na criação da instância.
type Settings struct {
	RejectCall      bool   `json:"rejectCall"`
	MsgCall         string `json:"msgCall,omitempty"`
	GroupsIgnore    bool   `json:"groupsIgnore"`
	AlwaysOnline    bool   `json:"alwaysOnline"`
	ReadMessages    bool   `json:"readMessages"`
	ReadStatus      bool   `json:"readStatus"`
	SyncFullHistory bool   `json:"syncFullHistory"`
}

type WebhookConfig struct {
	Enabled bool     `json:"enabled"`
	URL     string   `json:"url"`
	Events  []string `json:"events"`
}

type CreateInstanceRequest struct {
	InstanceName string `json:"instanceName"`
	Number       string `json:"number,omitempty"`
	QRCode       bool   `json:"qrcode"`
	Integration  string `json:"integration"`
}

type CreateInstanceResponse struct {
	Instance *InstanceRef `json:"instance,omitempty"`
	Hash     string       `json:"hash,omitempty"`
	QRCode   *QRCode      `json:"qrcode,omitempty"`
}

type InstanceRef struct {
	InstanceName string `json:"instanceName"`
	InstanceID   string `json:"instanceId,omitempty"`
	State        string `json:"state,omitempty"`
	Status       string `json:"status,omitempty"`
}

type QRCode struct {
	PairingCode string `json:"pairingCode,omitempty"`
	Code        string `json:"code,omitempty"`
	Base64      string `json:"base64,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Instance é um item de fetchInstances. A Evolution já mudou esse shape
// entre versões, então carregamos os dois nomes de campo.
type Instance struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	InstanceName     string `json:"instanceName,omitempty"`
	ConnectionStatus string `json:"connectionStatus,omitempty"`
	OwnerJID         string `json:"ownerJid,omitempty"`
	ProfileName      string `json:"profileName,omitempty"`
	Number           string `json:"number,omitempty"`
}

// DisplayName resolve o nome humano da instância independente da versão.
func (i Instance) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.InstanceName
}

// ConnectResponse é a resposta de GET /instance/connect/{name}. Dependendo do
// estado da sessão vem um QR (base64/code) ou só o bloco instance.
type ConnectResponse struct {
	QRCode
	Instance *InstanceRef `json:"instance,omitempty"`
}

type ConnectionStateResponse struct {
	Instance InstanceRef `json:"instance"`
}

// State devolve o estado de conexão carregado em qualquer dos campos.
func (r *ConnectionStateResponse) State() string {
	if r.Instance.State != "" {
		return r.Instance.State
	}
	return r.Instance.Status
}

type SendTextRequest struct {
	Number string  `json:"number"`
	Text   string  `json:"text"`
	Quoted *Quoted `json:"quoted,omitempty"`
}

type Quoted struct {
	Key MessageKey `json:"key"`
}

type SendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	Caption   string `json:"caption"`
}

type SendResponse struct {
	Key              MessageKey `json:"key"`
	MessageTimestamp int64      `json:"messageTimestamp,omitempty"`
}

type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// Message é a mensagem no formato da Evolution. O conteúdo fica em um mapa
// cuja única chave relevante identifica o tipo (conversation, imageMessage...).
type Message struct {
	Key              MessageKey     `json:"key"`
	PushName         string         `json:"pushName,omitempty"`
	Message          map[string]any `json:"message"`
	MessageType      string         `json:"messageType,omitempty"`
	MessageTimestamp int64          `json:"messageTimestamp,omitempty"`
}

type Contact struct {
	ID            string `json:"id,omitempty"`
	RemoteJID     string `json:"remoteJid,omitempty"`
	PushName      string `json:"pushName,omitempty"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
}

// JID resolve o identificador do contato independente da versão do shape.
func (c Contact) JID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.RemoteJID
}

type Chat struct {
	ID            string   `json:"id,omitempty"`
	RemoteJID     string   `json:"remoteJid,omitempty"`
	Name          string   `json:"name,omitempty"`
	ProfilePicURL string   `json:"profilePicUrl,omitempty"`
	UnreadCount   int      `json:"unreadCount,omitempty"`
	LastMessage   *Message `json:"lastMessage,omitempty"`
}

func (c Chat) JID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.RemoteJID
}
