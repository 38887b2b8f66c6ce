package catalog

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persiste as imagens enviadas para os produtos
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// DiskImageStore grava as imagens em um diretório local servido em /images
type DiskImageStore struct {
	dir       string
	urlPrefix string
}

// NewDiskImageStore cria uma nova instância de DiskImageStore
func NewDiskImageStore(dir string) *DiskImageStore {
	return &DiskImageStore{
		dir:       dir,
		urlPrefix: "images",
	}
}

// Save copia o arquivo para o disco com um nome único e retorna o caminho público
func (s *DiskImageStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrInvalidImage, ext)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	if err := writeFile(filepath.Join(s.dir, name), src); err != nil {
		return "", err
	}

	return path.Join(s.urlPrefix, name), nil
}

// writeFile grava src em target; em caso de erro o arquivo parcial é removido
func writeFile(target string, src io.Reader) error {
	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
