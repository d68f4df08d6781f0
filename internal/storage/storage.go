package storage

import (
	"context"
	"fmt"
	"io"

	"catty_srv/internal/config"

	"github.com/sirupsen/logrus"
)

// Storage backend types
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Storage is the export-archive backend: generated workbooks are written
// under a key and can be fetched back later.
type Storage interface {
	// Save writes the content under the key, replacing any previous object.
	Save(ctx context.Context, key string, reader io.Reader) error

	// Get retrieves the object under the key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object under the key.
	Delete(ctx context.Context, key string) error

	// JoinPath joins key elements with the backend's separator.
	JoinPath(elem ...string) string
}

// NewStorageFromConfig builds the configured archive backend wrapped with
// logging. Returns nil when archiving is disabled.
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	if !cfg.Storage.Archive {
		return nil, nil
	}

	var (
		backend Storage
		err     error
	)
	switch cfg.Storage.Type {
	case TypeLocal:
		backend, err = NewLocalStorage(cfg.Storage.BasePath)
	case TypeS3:
		backend, err = NewS3Storage(cfg.Storage.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	if err != nil {
		return nil, err
	}

	return NewLoggingStorage(backend, logger), nil
}
