// Package blob stores dataset snapshots and assessment reports on the local
// filesystem, S3 or Google Cloud Storage.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fitscore/fitscore/pkg/config"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidID is returned for ids that are not a single path segment.
	ErrInvalidID = errors.New("invalid blob id")
)

// Kind partitions the blob namespace.
type Kind string

const (
	KindDataset Kind = "datasets"
	KindReport  Kind = "reports"
)

// StorageClient abstracts blob storage for datasets and reports.
type StorageClient interface {
	Put(ctx context.Context, kind Kind, id string, data []byte) error
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	List(ctx context.Context, kind Kind) ([]string, error)
}

// New returns the StorageClient selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (StorageClient, error) {
	switch cfg.Backend {
	case "", config.StorageLocal:
		return NewLocalStorage(cfg.BaseDir), nil
	case config.StorageS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case config.StorageGCS:
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

func objectKey(kind Kind, id string) string {
	return string(kind) + "/" + id + ".json"
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(kind Kind, id string) string {
	return filepath.Join(s.BaseDir, string(kind), id+".json")
}

// Put stores a blob, replacing any previous content.
func (s *LocalStorage) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	if err := validID(id); err != nil {
		return err
	}
	path := s.path(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a blob.
func (s *LocalStorage) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(kind, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, ErrNotFound)
	}
	return data, err
}

// List returns the ids stored under kind, sorted.
func (s *LocalStorage) List(ctx context.Context, kind Kind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.BaseDir, string(kind)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
