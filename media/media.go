// Package media stores uploaded files for entity file fields.
package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"portfolio/config"
	"portfolio/logger"
)

// Storage saves an uploaded file under dir and returns the value to store in
// the entity field.
type Storage interface {
	Save(ctx context.Context, dir string, file *multipart.FileHeader) (string, error)
	URL(stored string) string
}

// New returns Cloudinary storage when credentials are configured and local
// disk storage otherwise.
func New(cfg config.Config, log logger.Logger) Storage {
	if cfg.Cloudinary.CloudName != "" {
		cs, err := NewCloudinaryStorage(cfg)
		if err == nil {
			log.Info("media stored on cloudinary")
			return cs
		}
		log.Error("cloudinary unavailable, falling back to local media", err)
	}
	return NewLocalStorage(cfg.Media.Root, cfg.Media.URL)
}

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Root() string { return s.root }

// Save writes file to <root>/<dir>/<uuid><ext> and returns the path relative
// to root.
func (s *LocalStorage) Save(_ context.Context, dir string, file *multipart.FileHeader) (string, error) {
	rel := path.Join(dir, fileName(file.Filename))
	dst := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := writeFile(dst, src); err != nil {
		return "", err
	}
	return rel, nil
}

// writeFile copies src into a new file at dst. On failure nothing is left
// at dst.
func writeFile(dst string, src io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}

	_, err = io.Copy(out, src)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close media file: %w", closeErr)
	} else if err != nil {
		err = fmt.Errorf("write media file: %w", err)
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func (s *LocalStorage) URL(stored string) string {
	return resolveURL(s.baseURL, stored)
}

func resolveURL(base, stored string) string {
	if stored == "" {
		return ""
	}
	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}
	return base + strings.TrimPrefix(stored, "/")
}

func fileName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}
