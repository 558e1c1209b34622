// Package storage archives uploaded import files. Archived files are never
// read back by the import pipeline; they exist so an administrator can see
// exactly what was uploaded.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/software-catalog/internal/config"
)

// Archive stores a blob under a key and returns where it ended up.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// New returns the archive backend selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Archive, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalArchive(cfg.LocalPath)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("storage: s3 backend requires a bucket")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg.AWSRegion, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Archive(newS3Client(awsCfg), cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("storage: unknown type %q", cfg.Type)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImportKey builds the archive key for an uploaded import file:
// imports/<yyyy>/<mm>/<uuid>-<filename>.
func ImportKey(now time.Time, filename string) string {
	name := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	name = strings.Trim(name, "_")
	if name == "" || name == "." {
		name = "upload"
	}
	return fmt.Sprintf("imports/%04d/%02d/%s-%s", now.Year(), int(now.Month()), uuid.New().String(), name)
}

// LocalArchive writes blobs below a directory.
type LocalArchive struct {
	root string
}

// NewLocalArchive creates the root directory if needed.
func NewLocalArchive(root string) (*LocalArchive, error) {
	if root == "" {
		root = "./data/uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", root, err)
	}
	return &LocalArchive{root: root}, nil
}

func (a *LocalArchive) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(a.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	return path, nil
}
