package storage

import (
	"context"
	"time"
)

type FileStorage interface {
	// UploadFile кладет файл в бакет под указанной папкой (photos, documents)
	// и возвращает публичный URL объекта.
	UploadFile(ctx context.Context, data []byte, filename, folder string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error

	GetFile(ctx context.Context, fileURL string) ([]byte, error)

	GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error)
}
