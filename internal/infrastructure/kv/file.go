package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kjk/common/atomicfile"
)

var _ KeyValue = (*FileStore)(nil)

// FileStore guarda cada clave en <dir>/<key>.json. Las escrituras reemplazan el archivo
// de forma atómica: un fallo a mitad deja el contenido anterior.
type FileStore struct {
	dir string
}

// NewFileStore crea el directorio si no existe.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directorio vacío: %w", ErrInvalidKey)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: crear %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) GetItem(_ context.Context, key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leer %s: %w", p, err)
	}
	return string(b), true, nil
}

func (s *FileStore) SetItem(_ context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	w, err := atomicfile.New(p)
	if err != nil {
		return fmt.Errorf("escribir %s: %w", p, err)
	}
	// Close confirma (rename sobre p); sin Close el temporal se borra y p queda intacto.
	defer w.RemoveIfNotClosed()
	if _, err := w.Write([]byte(value)); err != nil {
		return fmt.Errorf("escribir %s: %w", p, err)
	}
	return w.Close()
}

func (s *FileStore) RemoveItem(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar %s: %w", p, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
