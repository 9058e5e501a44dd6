package webhook

import (
	"encoding/json"
	"testing"
)

func TestNormalizeMessageBareAndWrapped(t *testing.T) {
	bare := `{"key":{"remoteJid":"a@s.whatsapp.net","id":"M1"},"message":{"conversation":"oi"}}`
	wrapped := `{"data":` + bare + `}`

	for _, raw := range []string{bare, wrapped} {
		msg, err := normalizeMessage(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("normalizeMessage(%s): %v", raw, err)
		}
		if msg.Key.ID != "M1" {
			t.Errorf("Key.ID = %q, want M1", msg.Key.ID)
		}
		if msg.Message["conversation"] != "oi" {
			t.Errorf("conversation = %v", msg.Message["conversation"])
		}
	}
}

func TestNormalizeMessageRejectsEmptyAndJunk(t *testing.T) {
	if _, err := normalizeMessage(nil); err == nil {
		t.Error("payload vazio deveria falhar")
	}
	if _, err := normalizeMessage(json.RawMessage(`{"foo":"bar"}`)); err == nil {
		t.Error("payload sem key nem message deveria falhar")
	}
}

func TestNormalizeContactsBothShapes(t *testing.T) {
	bare := `[{"id":"a@s.whatsapp.net","pushName":"Ana"}]`
	wrapped := `{"data":[{"id":"a@s.whatsapp.net","pushName":"Ana"},{"id":"b@s.whatsapp.net"}]}`

	list, err := normalizeContacts(json.RawMessage(bare))
	if err != nil || len(list) != 1 {
		t.Fatalf("bare: list=%v err=%v", list, err)
	}
	list, err = normalizeContacts(json.RawMessage(wrapped))
	if err != nil || len(list) != 2 {
		t.Fatalf("wrapped: list=%v err=%v", list, err)
	}
	if list[0].PushName != "Ana" {
		t.Errorf("PushName = %q", list[0].PushName)
	}
}

func TestNormalizeConnectionVariants(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus string
		wantReason string
	}{
		{"state field", `{"state":"open"}`, "open", ""},
		{"status field", `{"status":"close","reason":"logged out"}`, "close", "logged out"},
		{"numeric reason", `{"state":"close","statusReason":401}`, "close", "401"},
		{"state wins over status", `{"state":"open","status":"close"}`, "open", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := normalizeConnection(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("normalizeConnection: %v", err)
			}
			if update.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", update.Status, tt.wantStatus)
			}
			if update.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", update.Reason, tt.wantReason)
			}
		})
	}
}

func TestMessageTypeIgnoresContextInfo(t *testing.T) {
	content := map[string]any{
		"messageContextInfo": map[string]any{"deviceListMetadata": map[string]any{}},
		"imageMessage":       map[string]any{"url": "https://x/y.enc"},
	}
	if got := messageType(content); got != "imageMessage" {
		t.Errorf("messageType = %q, want imageMessage", got)
	}
}

func TestMessageTypeUnknownKey(t *testing.T) {
	content := map[string]any{"pollCreationMessage": map[string]any{}}
	if got := messageType(content); got != "pollCreationMessage" {
		t.Errorf("messageType = %q, want pollCreationMessage", got)
	}
	if got := messageType(map[string]any{}); got != "" {
		t.Errorf("messageType vazio = %q", got)
	}
}
