package model

import (
	"time"
)

// Salon is the billable tenant unit. It owns branches, services, staff users
// and appointments, and is the unit of data isolation.
type Salon struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	OwnerID       uint      `json:"owner_id" gorm:"index;not null"`
	Email         string    `json:"email" gorm:"type:varchar(100)"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(30)"`
	Address       string    `json:"address" gorm:"type:text"`
	Status        string    `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
