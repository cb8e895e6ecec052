// internal/storage/slot.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
)

// ErrNotFound is returned by Load when nothing was saved under the key yet.
var ErrNotFound = errors.New("storage: slot not found")

// Slot is a durable key-value slot holding one serialized document per key.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// New builds the slot selected by cfg.Storage.Driver. db is only used by the
// database driver and may be nil otherwise.
func New(cfg *config.Config, db *gorm.DB) (Slot, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return NewMemorySlot(), nil
	case config.StorageFile:
		return NewFileSlot(cfg.Storage.Path)
	case config.StorageDatabase:
		if db == nil {
			return nil, errors.New("database storage requires a database connection")
		}
		return NewDatabaseSlot(db), nil
	case config.StorageRedis:
		return NewRedisSlot(cfg.Redis)
	case config.StorageS3:
		return NewS3Slot(cfg.AWS)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
