package webhook

import "encoding/json"

// Tags de evento que a Evolution emite hoje. Tags desconhecidas são
// aceitas e ignoradas — a provider adiciona eventos sem aviso.
const (
	EventMessagesUpsert   = "messages.upsert"
	EventContactsUpsert   = "contacts.upsert"
	EventQRCodeUpdated    = "qrcode.updated"
	EventConnectionUpdate = "connection.update"
)

// Callback é o corpo cru de POST /webhook/evolution.
type Callback struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Sender   string          `json:"sender,omitempty"`
	Data     json.RawMessage `json:"data"`
}
