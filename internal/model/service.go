package model

import (
	"time"
)

// Service is a bookable salon service, e.g. a haircut or a facial.
type Service struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SalonID         uint      `json:"salon_id" gorm:"index;not null"`
	Name            string    `json:"name" gorm:"type:varchar(100);not null"`
	Description     string    `json:"description" gorm:"type:text"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
