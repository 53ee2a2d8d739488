package media

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"portfolio/config"
)

// CloudinaryStorage uploads into <folder>/<dir> and stores the secure URL.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cfg config.Config) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld, folder: cfg.Cloudinary.Folder}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, dir string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	result, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		PublicID:     uuid.NewString(),
		Folder:       path.Join(s.folder, strings.TrimSuffix(dir, "/")),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStorage) URL(stored string) string {
	return resolveURL("", stored)
}
