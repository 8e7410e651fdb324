package model

import (
	"time"
)

// Role is a salon-scoped named permission bundle assigned to staff users,
// distinct from the fixed system roles. Names are unique within a salon,
// not globally.
type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	SalonID     uint   `json:"salon_id" gorm:"uniqueIndex:idx_role_name_salon;not null"`
	Name        string `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_role_name_salon;not null"`
	Description string `json:"description" gorm:"type:text"`

	Permissions []string `json:"permissions" gorm:"type:jsonb;serializer:json"`

	// IsSystemRole marks built-in roles that cannot be deleted.
	IsSystemRole bool `json:"is_system_role" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
