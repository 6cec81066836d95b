package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"inventory/lib/clients"
	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/studio-b12/gowebdav"
)

// Backend moves snapshot documents to and from a remote store
type Backend interface {
	Upload(ctx context.Context, key string, content []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// BackendFactory builds the backend for a stored configuration
type BackendFactory func(ctx context.Context, config *models.SyncConfig) (Backend, error)

// NewBackendFactory decodes stored settings into the matching backend
func NewBackendFactory(isLocal bool) BackendFactory {
	return func(ctx context.Context, config *models.SyncConfig) (Backend, error) {
		switch config.SyncType {
		case models.SyncTypeS3:
			var settings models.S3Config
			if err := decodeSettings(config, &settings); err != nil {
				return nil, err
			}
			client, err := clients.NewS3Client(ctx, isLocal, &settings)
			if err != nil {
				return nil, err
			}
			return &S3Backend{Client: client}, nil

		case models.SyncTypeWebDAV:
			var settings models.WebDAVConfig
			if err := decodeSettings(config, &settings); err != nil {
				return nil, err
			}
			return &WebDAVBackend{Client: clients.NewWebDAVClient(&settings), Dir: settings.Path}, nil

		default:
			return nil, fmt.Errorf("%w: unknown sync type %q", data.ErrInvalidInput, config.SyncType)
		}
	}
}

func decodeSettings(config *models.SyncConfig, settings interface{ Validate() error }) error {
	if err := json.Unmarshal([]byte(config.Config), settings); err != nil {
		return fmt.Errorf("%w: stored %s settings are unreadable: %v", data.ErrInvalidConfig, config.SyncType, err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", data.ErrInvalidConfig, err)
	}
	return nil
}

// S3Backend stores snapshots as objects in a bucket
type S3Backend struct {
	Client clients.S3ClientInterface
}

func (b *S3Backend) Upload(ctx context.Context, key string, content []byte) error {
	return b.Client.PutObject(ctx, key, content, "application/json")
}

func (b *S3Backend) Download(ctx context.Context, key string) ([]byte, error) {
	content, err := b.Client.GetObject(ctx, key)
	if errors.Is(err, clients.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %v", data.ErrNotFound, err)
	}
	return content, err
}

// WebDAVClient is the part of gowebdav used for backups
type WebDAVClient interface {
	MkdirAll(path string, perm os.FileMode) error
	Write(path string, data []byte, perm os.FileMode) error
	Read(path string) ([]byte, error)
}

// WebDAVBackend stores snapshots as files under Dir on a WebDAV server
type WebDAVBackend struct {
	Client WebDAVClient
	Dir    string
}

func (b *WebDAVBackend) Upload(ctx context.Context, key string, content []byte) error {
	dir := util.ConditionalString(b.Dir != "", b.Dir, "/")
	if err := b.Client.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create webdav directory %s: %w", dir, err)
	}
	target := path.Join(dir, key)
	if err := b.Client.Write(target, content, 0o644); err != nil {
		return fmt.Errorf("failed to write webdav file %s: %w", target, err)
	}
	return nil
}

func (b *WebDAVBackend) Download(ctx context.Context, key string) ([]byte, error) {
	target := path.Join(util.ConditionalString(b.Dir != "", b.Dir, "/"), key)
	content, err := b.Client.Read(target)
	if gowebdav.IsErrNotFound(err) {
		return nil, fmt.Errorf("%w: webdav file %s", data.ErrNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read webdav file %s: %w", target, err)
	}
	return content, nil
}
