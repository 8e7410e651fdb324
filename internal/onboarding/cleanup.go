package onboarding

import (
	"time"

	"salon-service/internal/model"
	"salon-service/internal/permission"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cleaner removes stale registrations. Owners who never completed their
// profile are purged after MaxAge, together with the salon created for them
// at registration time. This also reconciles salons orphaned by a crash in
// the middle of the registration sequence.
type Cleaner struct {
	DB     *gorm.DB
	MaxAge time.Duration
	Log    *zap.Logger
}

func NewCleaner(db *gorm.DB, maxAge time.Duration, log *zap.Logger) *Cleaner {
	return &Cleaner{DB: db, MaxAge: maxAge, Log: log}
}

// Run executes one cleanup pass.
func (c *Cleaner) Run() {
	cutoff := time.Now().Add(-c.MaxAge)

	var stale []model.User
	result := c.DB.Where("role = ? AND status = ? AND created_at < ?",
		permission.RoleSalonOwner, permission.StatusPendingDetails, cutoff).Find(&stale)
	if result.Error != nil {
		c.Log.Error("Cleanup query failed", zap.Error(result.Error))
		return
	}

	for _, user := range stale {
		err := c.DB.Transaction(func(tx *gorm.DB) error {
			if user.SalonID != nil {
				if err := tx.Delete(&model.Salon{}, *user.SalonID).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&model.User{}, user.ID).Error
		})
		if err != nil {
			c.Log.Error("Failed to purge stale registration",
				zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		c.Log.Info("Purged stale registration",
			zap.Uint("user_id", user.ID),
			zap.String("email", user.Email),
			zap.Time("registered_at", user.CreatedAt))
	}

	// Salons whose owner record no longer exists are leftovers from the
	// registration sequence failing between steps.
	result = c.DB.Where("owner_id NOT IN (?) AND created_at < ?",
		c.DB.Model(&model.User{}).Select("id"), cutoff).Delete(&model.Salon{})
	if result.Error != nil {
		c.Log.Error("Orphaned salon cleanup failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		c.Log.Info("Removed orphaned salons", zap.Int64("count", result.RowsAffected))
	}
}
