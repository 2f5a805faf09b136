package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"gorm.io/gorm"
)

// FSStore writes bytes under a root directory and metadata to the database.
type FSStore struct {
	db      *gorm.DB
	root    string
	baseURL string
}

func NewFSStore(db *gorm.DB, root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	return &FSStore{db: db, root: root, baseURL: baseURL}, nil
}

func (s *FSStore) WithTx(tx *gorm.DB) Store {
	return &FSStore{db: tx, root: s.root, baseURL: s.baseURL}
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) Put(ctx context.Context, obj Object) (Ref, error) {
	key, err := CleanKey(obj.Key)
	if err != nil {
		return Ref{}, err
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return Ref{}, err
	}
	// Write to a temp file first so readers never see a partial document.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, obj.Data, 0o640); err != nil {
		return Ref{}, err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return Ref{}, err
	}
	if err := putMeta(ctx, s.db, "fs", obj, key, false); err != nil {
		_ = os.Remove(p)
		return Ref{}, err
	}
	return Ref{Key: key, URL: URLFor(s.baseURL, key)}, nil
}

func (s *FSStore) Open(ctx context.Context, key string) (*models.Artifact, []byte, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, nil, err
	}
	row, err := loadMeta(ctx, s.db, key)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return row, data, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.Artifact{})
	if res.Error != nil {
		return res.Error
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FSStore) Discard(key string) {
	if key, err := CleanKey(key); err == nil {
		_ = os.Remove(s.path(key))
	}
}
