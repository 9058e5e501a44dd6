package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.EvolutionConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, zap.NewNop())
	return client, srv
}

func TestClientSendsAPIKeyHeader(t *testing.T) {
	var gotKey, gotContentType string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`[]`))
	})

	if _, err := client.FetchInstances(context.Background()); err != nil {
		t.Fatalf("FetchInstances: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey header = %q, want %q", gotKey, "test-key")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestClientSingleAttempt(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})

	_, err := client.FetchInstances(context.Background())
	if err == nil {
		t.Fatal("esperava erro em resposta 500")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (sem retry)", attempts)
	}
}

func TestClientErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"response":{"message":["instance already exists"]}}`))
	})

	_, err := client.Connect(context.Background(), "sales-bot", "")
	perr, ok := As(err)
	if !ok {
		t.Fatalf("esperava *Error, veio %T: %v", err, err)
	}
	if perr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", perr.StatusCode)
	}
	if perr.Message != "instance already exists" {
		t.Errorf("Message = %q", perr.Message)
	}
	if perr.Body == "" {
		t.Error("Body verbatim não pode ser vazio")
	}
}

func TestExtractMessageShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested list", `{"response":{"message":["a","b"]}}`, "a; b"},
		{"flat message", `{"message":"not found"}`, "not found"},
		{"error field", `{"error":"Unauthorized"}`, "Unauthorized"},
		{"plain text", `gateway timeout`, "gateway timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("extractMessage(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, 2},
		{"data wrapper", `{"data":[{"id":"a"}]}`, 1},
		{"records wrapper", `{"messages":{"records":[{"id":"a"},{"id":"b"},{"id":"c"}]}}`, 3},
		{"empty object", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := decodeList[Contact](json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("decodeList: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("len = %d, want %d", len(list), tt.want)
			}
		})
	}
}

func TestFindMessagesSendsWhereFilter(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`[]`))
	})

	if _, err := client.FindMessages(context.Background(), "sales-bot", "5511999@s.whatsapp.net"); err != nil {
		t.Fatalf("FindMessages: %v", err)
	}

	where, _ := body["where"].(map[string]any)
	key, _ := where["key"].(map[string]any)
	if key["remoteJid"] != "5511999@s.whatsapp.net" {
		t.Errorf("where.key.remoteJid = %v", key["remoteJid"])
	}
}
