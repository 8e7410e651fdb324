package model

import (
	"time"
)

// Branch is a physical location belonging to a salon.
type Branch struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	SalonID       uint      `json:"salon_id" gorm:"index;not null"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	Type          string    `json:"type" gorm:"type:varchar(50)"` // e.g. "Main Branch", "Outlet"
	Address       string    `json:"address" gorm:"type:text"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(30)"`
	Email         string    `json:"email" gorm:"type:varchar(100)"`
	Status        string    `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
