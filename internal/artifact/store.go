// Package artifact stores generated and uploaded documents.
//
// Metadata always lives in the artifacts table so a Put can join the
// caller's transaction. The bytes live either in that same row (DBStore)
// or on disk (FSStore).
package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("artifact not found")
	ErrInvalidKey = errors.New("invalid artifact key")
)

// Object is a document to store.
type Object struct {
	Key        string
	Name       string
	MimeType   string
	OwnerType  string
	OwnerID    uint
	UploadedBy *uint
	Data       []byte
}

// Ref locates a stored document.
type Ref struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Store interface {
	// WithTx binds metadata writes to tx.
	WithTx(tx *gorm.DB) Store
	Put(ctx context.Context, obj Object) (Ref, error)
	Open(ctx context.Context, key string) (*models.Artifact, []byte, error)
	Delete(ctx context.Context, key string) error
	// Discard drops bytes a rolled back Put left outside the database.
	Discard(key string)
}

// NewKey builds "<prefix>/<uuid>.<ext>".
func NewKey(prefix, ext string) string {
	return path.Join(prefix, uuid.NewString()+"."+strings.TrimPrefix(ext, "."))
}

// CleanKey rejects absolute keys and keys escaping the store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidKey
	}
	return c, nil
}

// URLFor is the download link served by the artifacts route.
func URLFor(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/artifacts/" + key
}

// New picks a backend by name.
func New(backend string, db *gorm.DB, dir, baseURL string) (Store, error) {
	switch backend {
	case "", "db":
		return NewDBStore(db, baseURL), nil
	case "fs":
		return NewFSStore(db, dir, baseURL)
	}
	return nil, fmt.Errorf("unknown artifact backend %q", backend)
}

func putMeta(ctx context.Context, db *gorm.DB, backend string, obj Object, key string, withData bool) error {
	row := models.Artifact{
		Key:        key,
		OwnerType:  obj.OwnerType,
		OwnerID:    obj.OwnerID,
		Name:       obj.Name,
		MimeType:   obj.MimeType,
		Size:       int64(len(obj.Data)),
		Backend:    backend,
		UploadedBy: obj.UploadedBy,
	}
	if withData {
		row.Data = obj.Data
	}
	return db.WithContext(ctx).Create(&row).Error
}

func loadMeta(ctx context.Context, db *gorm.DB, key string) (*models.Artifact, error) {
	var row models.Artifact
	err := db.WithContext(ctx).Where("storage_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
