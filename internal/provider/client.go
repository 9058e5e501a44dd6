package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/config"
)

// Client fala com a Evolution API. Uma tentativa por chamada; política de
// retry é decisão de quem chama.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

func NewClient(cfg config.EvolutionConfig, log *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		log:     log,
	}
}

func (c *Client) CreateInstance(ctx context.Context, req CreateInstanceRequest) (*CreateInstanceResponse, error) {
	var out CreateInstanceResponse
	if err := c.do(ctx, http.MethodPost, "/instance/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchInstances(ctx context.Context) ([]Instance, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/instance/fetchInstances", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Instance](raw)
}

func (c *Client) Connect(ctx context.Context, name, number string) (*ConnectResponse, error) {
	path := "/instance/connect/" + url.PathEscape(name)
	if number != "" {
		path += "?number=" + url.QueryEscape(number)
	}
	var out ConnectResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConnectionState(ctx context.Context, name string) (*ConnectionStateResponse, error) {
	var out ConnectionStateResponse
	if err := c.do(ctx, http.MethodGet, "/instance/connectionState/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetSettings(ctx context.Context, name string, settings Settings) error {
	return c.do(ctx, http.MethodPost, "/settings/set/"+url.PathEscape(name), settings, nil)
}

func (c *Client) SetWebhook(ctx context.Context, name string, webhook WebhookConfig) error {
	body := map[string]WebhookConfig{"webhook": webhook}
	return c.do(ctx, http.MethodPost, "/webhook/set/"+url.PathEscape(name), body, nil)
}

func (c *Client) SendText(ctx context.Context, name string, req SendTextRequest) (*SendResponse, error) {
	var out SendResponse
	if err := c.do(ctx, http.MethodPost, "/message/sendText/"+url.PathEscape(name), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMedia(ctx context.Context, name string, req SendMediaRequest) (*SendResponse, error) {
	var out SendResponse
	if err := c.do(ctx, http.MethodPost, "/message/sendMedia/"+url.PathEscape(name), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindContacts(ctx context.Context, name string) ([]Contact, error) {
	var raw json.RawMessage
	body := map[string]any{"where": map[string]any{}}
	if err := c.do(ctx, http.MethodPost, "/chat/findContacts/"+url.PathEscape(name), body, &raw); err != nil {
		return nil, err
	}
	return decodeList[Contact](raw)
}

func (c *Client) FindChats(ctx context.Context, name string) ([]Chat, error) {
	var raw json.RawMessage
	body := map[string]any{"where": map[string]any{}}
	if err := c.do(ctx, http.MethodPost, "/chat/findChats/"+url.PathEscape(name), body, &raw); err != nil {
		return nil, err
	}
	return decodeList[Chat](raw)
}

func (c *Client) FindMessages(ctx context.Context, name, remoteJID string) ([]Message, error) {
	var raw json.RawMessage
	body := map[string]any{
		"where": map[string]any{"key": map[string]any{"remoteJid": remoteJID}},
	}
	if err := c.do(ctx, http.MethodPost, "/chat/findMessages/"+url.PathEscape(name), body, &raw); err != nil {
		return nil, err
	}
	return decodeList[Message](raw)
}

func (c *Client) Logout(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/instance/logout/"+url.PathEscape(name), nil, nil)
}

func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/instance/delete/"+url.PathEscape(name), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("provider: marshal %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("provider: request %s: %w", path, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("provider: ler resposta de %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("provider: resposta não-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return newError(resp.StatusCode, path, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("provider: decodificar resposta de %s: %w", path, err)
		}
	}
	return nil
}

// decodeList aceita os shapes de listagem que a Evolution já usou:
// array puro, {data:[...]} e {messages:{records:[...]}}.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data     []T `json:"data"`
		Messages struct {
			Records []T `json:"records"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("provider: shape de listagem desconhecido: %w", err)
	}
	if len(wrapped.Data) > 0 {
		return wrapped.Data, nil
	}
	return wrapped.Messages.Records, nil
}
