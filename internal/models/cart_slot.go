// internal/models/cart_slot.go
package models

import "time"

// CartSlot is a durable key-value row holding one serialized cart slice.
type CartSlot struct {
	Key       string    `json:"key" gorm:"primaryKey;size:128"`
	Payload   Payload   `json:"payload" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
