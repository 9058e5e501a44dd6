package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/provider"
)

type fakeMessageSink struct {
	messages []*provider.Message
	err      error
}

func (f *fakeMessageSink) IngestMessage(ctx context.Context, instance string, msg *provider.Message) error {
	f.messages = append(f.messages, msg)
	return f.err
}

type fakeContactSink struct {
	contacts []provider.Contact
}

func (f *fakeContactSink) UpsertContact(ctx context.Context, instance string, contact provider.Contact) error {
	f.contacts = append(f.contacts, contact)
	return nil
}

type fakeConnectionSink struct {
	status string
	reason string
	calls  int
}

func (f *fakeConnectionSink) UpdateConnection(ctx context.Context, instance, status, reason string) error {
	f.status, f.reason = status, reason
	f.calls++
	return nil
}

type fakeQRSink struct {
	published []json.RawMessage
}

func (f *fakeQRSink) Publish(instance string, payload json.RawMessage) {
	f.published = append(f.published, payload)
}

type fakeRelocator struct {
	calls     int
	lastURL   string
	lastMime  string
	publicURL string
	err       error
}

func (f *fakeRelocator) Relocate(ctx context.Context, sourceURL, correlationID, mimeType string) (string, error) {
	f.calls++
	f.lastURL = sourceURL
	f.lastMime = mimeType
	return f.publicURL, f.err
}

func newTestDispatcher(relocator Relocator) (*Dispatcher, *fakeMessageSink, *fakeContactSink, *fakeConnectionSink, *fakeQRSink) {
	messages := &fakeMessageSink{}
	contacts := &fakeContactSink{}
	connections := &fakeConnectionSink{}
	qrSink := &fakeQRSink{}
	d := NewDispatcher(messages, contacts, connections, qrSink, relocator, zap.NewNop())
	return d, messages, contacts, connections, qrSink
}

func messageData(t *testing.T, fromMe bool, content map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"key":     map[string]any{"remoteJid": "c@s.whatsapp.net", "fromMe": fromMe, "id": "MSG1"},
		"message": content,
	})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDispatchUnknownEventIgnored(t *testing.T) {
	d, messages, contacts, connections, qrSink := newTestDispatcher(nil)

	d.Dispatch(context.Background(), &Callback{Event: "labels.edit", Instance: "bot", Data: json.RawMessage(`{}`)})

	if len(messages.messages) != 0 || len(contacts.contacts) != 0 || connections.calls != 0 || len(qrSink.published) != 0 {
		t.Error("evento desconhecido não pode acionar nenhum sink")
	}
}

func TestDispatchTextMessageSkipsRelocation(t *testing.T) {
	relocator := &fakeRelocator{}
	d, messages, _, _, _ := newTestDispatcher(relocator)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventMessagesUpsert,
		Instance: "bot",
		Data:     messageData(t, false, map[string]any{"conversation": "oi"}),
	})

	if relocator.calls != 0 {
		t.Error("mensagem de texto não deveria passar pelo relocator")
	}
	if len(messages.messages) != 1 {
		t.Fatalf("messages ingeridas = %d, want 1", len(messages.messages))
	}
}

func TestDispatchOwnMediaSkipsRelocation(t *testing.T) {
	relocator := &fakeRelocator{}
	d, messages, _, _, _ := newTestDispatcher(relocator)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventMessagesUpsert,
		Instance: "bot",
		Data: messageData(t, true, map[string]any{
			"imageMessage": map[string]any{"url": "https://mmg.whatsapp.net/x.enc", "mimetype": "image/jpeg"},
		}),
	})

	if relocator.calls != 0 {
		t.Error("mídia fromMe não pode ser realocada")
	}
	if len(messages.messages) != 1 {
		t.Fatal("mensagem própria ainda deve ser ingerida")
	}
}

func TestDispatchIncomingMediaRelocated(t *testing.T) {
	relocator := &fakeRelocator{publicURL: "https://storage.googleapis.com/bucket/media/MSG1_1.jpeg"}
	d, messages, _, _, _ := newTestDispatcher(relocator)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventMessagesUpsert,
		Instance: "bot",
		Data: messageData(t, false, map[string]any{
			"imageMessage": map[string]any{"url": "https://mmg.whatsapp.net/x.enc", "mimetype": "image/jpeg"},
		}),
	})

	if relocator.calls != 1 {
		t.Fatalf("relocator.calls = %d, want 1", relocator.calls)
	}
	if relocator.lastURL != "https://mmg.whatsapp.net/x.enc" || relocator.lastMime != "image/jpeg" {
		t.Errorf("relocate args = (%q, %q)", relocator.lastURL, relocator.lastMime)
	}
	if len(messages.messages) != 1 {
		t.Fatal("mensagem não foi ingerida")
	}
	if got := messages.messages[0].Message["mediaUrl"]; got != relocator.publicURL {
		t.Errorf("mediaUrl = %v, want %q", got, relocator.publicURL)
	}
}

func TestDispatchRelocationFailureStillIngests(t *testing.T) {
	relocator := &fakeRelocator{err: errors.New("bucket fora do ar")}
	d, messages, _, _, _ := newTestDispatcher(relocator)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventMessagesUpsert,
		Instance: "bot",
		Data: messageData(t, false, map[string]any{
			"videoMessage": map[string]any{"url": "https://mmg.whatsapp.net/v.enc", "mimetype": "video/mp4"},
		}),
	})

	if len(messages.messages) != 1 {
		t.Fatal("falha de realocação não pode derrubar a ingestão")
	}
	if _, ok := messages.messages[0].Message["mediaUrl"]; ok {
		t.Error("mediaUrl não deveria existir quando a realocação falha")
	}
}

func TestDispatchNilRelocatorStillIngests(t *testing.T) {
	d, messages, _, _, _ := newTestDispatcher(nil)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventMessagesUpsert,
		Instance: "bot",
		Data: messageData(t, false, map[string]any{
			"imageMessage": map[string]any{"url": "https://mmg.whatsapp.net/x.enc"},
		}),
	})

	if len(messages.messages) != 1 {
		t.Fatal("sem storage configurado a mensagem segue intacta")
	}
}

func TestDispatchContactsBothShapes(t *testing.T) {
	d, _, contacts, _, _ := newTestDispatcher(nil)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventContactsUpsert,
		Instance: "bot",
		Data:     json.RawMessage(`[{"id":"a@s.whatsapp.net"}]`),
	})
	d.Dispatch(context.Background(), &Callback{
		Event:    EventContactsUpsert,
		Instance: "bot",
		Data:     json.RawMessage(`{"data":[{"id":"b@s.whatsapp.net"},{"id":"c@s.whatsapp.net"}]}`),
	})

	if len(contacts.contacts) != 3 {
		t.Errorf("contatos sincronizados = %d, want 3", len(contacts.contacts))
	}
}

func TestDispatchConnectionUpdate(t *testing.T) {
	d, _, _, connections, _ := newTestDispatcher(nil)

	d.Dispatch(context.Background(), &Callback{
		Event:    EventConnectionUpdate,
		Instance: "bot",
		Data:     json.RawMessage(`{"state":"open"}`),
	})

	if connections.calls != 1 || connections.status != "open" {
		t.Errorf("connection sink: calls=%d status=%q", connections.calls, connections.status)
	}
}

func TestDispatchQRCodePublished(t *testing.T) {
	d, _, _, _, qrSink := newTestDispatcher(nil)

	payload := json.RawMessage(`{"qrcode":{"base64":"data:image/png;base64,xyz"}}`)
	d.Dispatch(context.Background(), &Callback{Event: EventQRCodeUpdated, Instance: "bot", Data: payload})

	if len(qrSink.published) != 1 {
		t.Fatalf("qr publicados = %d, want 1", len(qrSink.published))
	}
}
