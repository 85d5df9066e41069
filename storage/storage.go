// Package storage archives rendered research briefings on the local
// filesystem or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"jurissearch-backend/config"
)

// ErrNotFound is returned by Download when no object exists at the key
var ErrNotFound = errors.New("object not found")

// Storage stores briefing documents keyed by research session
type Storage interface {
	// Upload stores a document for a session and returns its key
	Upload(ctx context.Context, sessionID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a document by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a document by key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Type is a storage backend name
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// NewStorage creates the backend selected by cfg.Type
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch Type(strings.ToLower(cfg.Type)) {
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("s3_bucket is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// objectKey builds the key for a session document: briefings/<session>/<name>
func objectKey(sessionID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return path.Join("briefings", sessionID.String(), name)
}

// contentType maps a document extension to its MIME type
func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
