package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadService stores uploaded template images under the local storage
// directory, mirroring the backend's storage/ layout so stored URLs resolve
// the same way in both places.
type UploadService struct {
	storageDir string
	publicBase string
}

func NewUploadService(storageDir, publicBase string) *UploadService {
	return &UploadService{
		storageDir: storageDir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}
}

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// SaveImage writes one uploaded file and returns its public URL. field is
// "background_image" or "element_image" and selects the subdirectory.
func (s *UploadService) SaveImage(field string, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	subdir := "elements"
	if field == "background_image" {
		subdir = "backgrounds"
	}
	dir := filepath.Join(s.storageDir, "certificates", subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare storage dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}

	return fmt.Sprintf("%s/storage/certificates/%s/%s", s.publicBase, subdir, name), nil
}
