// Package gcs publica mídia realocada em um bucket do Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/config"
)

type Storage struct {
	client  *storage.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

func New(ctx context.Context, cfg config.GCSConfig, log *zap.Logger) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: criar client: %w", err)
	}

	log.Info("gcs: client criado", zap.String("bucket", cfg.Bucket))

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
		log:     log,
	}, nil
}

// Put grava o objeto com sobrescrita permitida; realocações repetidas da
// mesma mensagem só geram um novo objeto, nunca erro.
func (s *Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: gravar %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: finalizar %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
