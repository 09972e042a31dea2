package models

import (
	"time"

	"gorm.io/gorm"
)

type EntityStatus string

const (
	EntityActive    EntityStatus = "ACTIVE"
	EntitySuspended EntityStatus = "SUSPENDED"
)

// Entity is a supervised organization. Membership itself is resolved by the
// identity provider and arrives in the caller's token; this table exists for
// entity status and for the completion-rate denominator.
type Entity struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"size:255;not null" json:"name"`
	Code      string       `gorm:"size:64;uniqueIndex" json:"code"`
	Status    EntityStatus `gorm:"size:16;not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ActiveEntityCount is read live at query time. Completion rates always use
// the current organizational membership, not a snapshot.
func ActiveEntityCount(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Entity{}).Where("status = ?", EntityActive).Count(&count).Error
	return count, err
}
