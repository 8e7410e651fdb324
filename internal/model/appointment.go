package model

import (
	"time"
)

// Appointment books a customer with a staff member for a service. The
// duration is copied from the service record at booking time.
type Appointment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SalonID         uint      `json:"salon_id" gorm:"index;not null"`
	CustomerID      uint      `json:"customer_id" gorm:"index;not null"`
	StaffID         uint      `json:"staff_id" gorm:"index;not null"`
	ServiceID       uint      `json:"service_id" gorm:"index;not null"`
	ScheduledAt     time.Time `json:"scheduled_at" gorm:"index;not null"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null;default:'confirmed'"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
