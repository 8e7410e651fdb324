package model

import (
	"time"
)

// User represents an authenticated principal: the platform administrator, a
// salon owner, or a salon staff member. Role is either one of the fixed
// system roles or the name of a salon-scoped custom role.
//
// Users are removed with hard deletes only. Administrator rejection and staff
// removal are permanent, so there is no soft-delete column.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"type:varchar(100)"`
	Email        string `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	PasswordHash string `json:"-" gorm:"type:varchar(255)"`
	Role         string `json:"role" gorm:"type:varchar(50);not null;default:'USER'"`
	Status       string `json:"status" gorm:"type:varchar(30);not null;default:'PENDING_DETAILS'"`

	// SalonID is nil for SUPER_ADMIN and for owners whose registration has
	// not finished linking the salon record yet.
	SalonID       *uint  `json:"salon_id,omitempty" gorm:"index"`
	ContactNumber string `json:"contact_number" gorm:"type:varchar(30)"`

	// Verification document URLs submitted during profile completion.
	NICFront    string `json:"nic_front" gorm:"type:varchar(255)"`
	NICBack     string `json:"nic_back" gorm:"type:varchar(255)"`
	BusinessReg string `json:"business_reg" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
