package storage

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingStorage wraps a Storage with per-operation logging.
type LoggingStorage struct {
	storage Storage
	logger  *logrus.Logger
}

// NewLoggingStorage creates a new logging wrapper
func NewLoggingStorage(storage Storage, logger *logrus.Logger) Storage {
	return &LoggingStorage{storage: storage, logger: logger}
}

func (m *LoggingStorage) log(op, key string) *logrus.Entry {
	return m.logger.WithFields(logrus.Fields{
		"operation": op,
		"key":       key,
	})
}

// Save logs the save operation
func (m *LoggingStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	start := time.Now()
	err := m.storage.Save(ctx, key, reader)
	entry := m.log("save", key).WithField("duration", time.Since(start))
	if err != nil {
		entry.WithError(err).Error("Storage save failed")
	} else {
		entry.Debug("Storage save completed")
	}
	return err
}

// Get logs the get operation
func (m *LoggingStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	reader, err := m.storage.Get(ctx, key)
	entry := m.log("get", key).WithField("duration", time.Since(start))
	if err != nil {
		entry.WithError(err).Error("Storage get failed")
	} else {
		entry.Debug("Storage get completed")
	}
	return reader, err
}

// Exists delegates to the wrapped storage
func (m *LoggingStorage) Exists(ctx context.Context, key string) (bool, error) {
	return m.storage.Exists(ctx, key)
}

// Delete logs the delete operation
func (m *LoggingStorage) Delete(ctx context.Context, key string) error {
	err := m.storage.Delete(ctx, key)
	if err != nil {
		m.log("delete", key).WithError(err).Error("Storage delete failed")
	}
	return err
}

// JoinPath delegates to the wrapped storage
func (m *LoggingStorage) JoinPath(elem ...string) string {
	return m.storage.JoinPath(elem...)
}
