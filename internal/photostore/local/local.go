package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/wardrobe/internal/photostore"
)

// imageExts maps accepted photo types to file extensions. Unknown types are
// stored as JPEG.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalPhotoStore keeps photos as flat files in one directory. All file
// access goes through an os.Root so keys cannot escape it.
type LocalPhotoStore struct {
	root   *os.Root
	logger *slog.Logger
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo directory: %w", err)
	}
	return &LocalPhotoStore{root: root, logger: slog.Default().With("component", "photostore")}, nil
}

func (s *LocalPhotoStore) Close() error {
	return s.root.Close()
}

// Save writes r under a fresh key of the form "<prefix>_<uuid><ext>". The
// file appears under its key only once fully written.
func (s *LocalPhotoStore) Save(_ context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	if prefix == "" || strings.ContainsAny(prefix, `/\`) || strings.HasPrefix(prefix, ".") {
		return "", fmt.Errorf("invalid photo prefix %q", prefix)
	}
	ext, ok := imageExts[mimeType]
	if !ok {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext)
	tmp := ".upload-" + uuid.NewString()

	f, err := s.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = s.root.Rename(tmp, key)
	}
	if err != nil {
		if rerr := s.root.Remove(tmp); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			s.logger.Error("failed to remove partial upload", "file", tmp, "error", rerr)
		}
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Get(_ context.Context, storageKey string) (io.ReadCloser, string, error) {
	if err := checkKey(storageKey); err != nil {
		return nil, "", err
	}
	f, err := s.root.Open(storageKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	return f, mimeTypeOf(storageKey), nil
}

func (s *LocalPhotoStore) Delete(_ context.Context, storageKey string) error {
	if err := checkKey(storageKey); err != nil {
		return err
	}
	if err := s.root.Remove(storageKey); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return photostore.ErrNotFound
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// checkKey accepts only plain file names, which is all Save hands out.
func checkKey(storageKey string) error {
	if storageKey == "" || filepath.Base(storageKey) != storageKey || strings.HasPrefix(storageKey, ".") {
		return fmt.Errorf("invalid storage key %q", storageKey)
	}
	return nil
}

func mimeTypeOf(storageKey string) string {
	ext := strings.ToLower(filepath.Ext(storageKey))
	for mimeType, e := range imageExts {
		if e == ext {
			return mimeType
		}
	}
	return "image/jpeg"
}
