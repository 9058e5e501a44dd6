// Package media realoca mídia efêmera da Evolution para storage durável.
// A URL de origem expira em minutos; depois da realocação a mensagem
// referencia só o objeto re-hospedado.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const downloadTimeout = 30 * time.Second

// ObjectStorage é o destino durável. Put devolve a URL pública estável.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Relocator struct {
	http    *http.Client
	storage ObjectStorage
	log     *zap.Logger
}

func NewRelocator(storage ObjectStorage, log *zap.Logger) *Relocator {
	return &Relocator{
		http:    &http.Client{Timeout: downloadTimeout},
		storage: storage,
		log:     log,
	}
}

// Relocate baixa o binário de sourceURL e o republica no storage. Toda falha
// volta como erro; nunca propaga panic e nunca derruba o caller — realocação
// é sempre advisory.
func (r *Relocator) Relocate(ctx context.Context, sourceURL, correlationID, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("media: request de download: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("media: download retornou status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("media: ler corpo do download: %w", err)
	}

	r.log.Debug("media: download concluído",
		zap.String("correlation_id", correlationID),
		zap.Int("size", len(data)),
	)

	key := fmt.Sprintf("media/%s_%d.%s", correlationID, time.Now().UnixMilli(), extensionFromMime(mimeType))

	publicURL, err := r.storage.Put(ctx, key, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("media: upload: %w", err)
	}

	r.log.Info("media: realocada",
		zap.String("correlation_id", correlationID),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return publicURL, nil
}

// extensionFromMime extrai a extensão do subtipo MIME ("image/jpeg" -> jpeg,
// "application/pdf;charset=x" -> pdf). Sem MIME, cai no binário genérico.
func extensionFromMime(mimeType string) string {
	if i := strings.Index(mimeType, "/"); i >= 0 {
		ext := mimeType[i+1:]
		if j := strings.Index(ext, ";"); j >= 0 {
			ext = ext[:j]
		}
		if ext = strings.TrimSpace(ext); ext != "" {
			return ext
		}
	}
	return "bin"
}
