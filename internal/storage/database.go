// internal/storage/database.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/storefront-backend/internal/models"
)

// DatabaseSlot stores documents as rows of the cart_slots table.
type DatabaseSlot struct {
	db *gorm.DB
}

func NewDatabaseSlot(db *gorm.DB) *DatabaseSlot {
	return &DatabaseSlot{db: db}
}

func (d *DatabaseSlot) Load(ctx context.Context, key string) ([]byte, error) {
	var slot models.CartSlot
	if err := d.db.WithContext(ctx).Where(&models.CartSlot{Key: key}).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return []byte(slot.Payload), nil
}

func (d *DatabaseSlot) Save(ctx context.Context, key string, data []byte) error {
	slot := &models.CartSlot{
		Key:     key,
		Payload: models.Payload(data),
	}

	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(slot).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}
