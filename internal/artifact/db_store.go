package artifact

import (
	"context"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"gorm.io/gorm"
)

// DBStore keeps bytes in the artifacts row, so a Put inside a
// transaction disappears with a rollback.
type DBStore struct {
	db      *gorm.DB
	baseURL string
}

func NewDBStore(db *gorm.DB, baseURL string) *DBStore {
	return &DBStore{db: db, baseURL: baseURL}
}

func (s *DBStore) WithTx(tx *gorm.DB) Store {
	return &DBStore{db: tx, baseURL: s.baseURL}
}

func (s *DBStore) Put(ctx context.Context, obj Object) (Ref, error) {
	key, err := CleanKey(obj.Key)
	if err != nil {
		return Ref{}, err
	}
	if err := putMeta(ctx, s.db, "db", obj, key, true); err != nil {
		return Ref{}, err
	}
	return Ref{Key: key, URL: URLFor(s.baseURL, key)}, nil
}

func (s *DBStore) Open(ctx context.Context, key string) (*models.Artifact, []byte, error) {
	row, err := loadMeta(ctx, s.db, key)
	if err != nil {
		return nil, nil, err
	}
	return row, row.Data, nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.Artifact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DBStore) Discard(string) {}
