package handler

import (
	"net/http"
	"strconv"
	"time"

	"salon-service/internal/middleware"
	"salon-service/internal/model"
	"salon-service/internal/onboarding"
	"salon-service/internal/permission"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnboardingHandler owns the approval workflow endpoints: profile
// completion for owners and the administrator's request queue.
type OnboardingHandler struct {
	DB *gorm.DB
}

func NewOnboardingHandler(db *gorm.DB) *OnboardingHandler {
	return &OnboardingHandler{DB: db}
}

// CompleteProfile saves the owner's profile and verification details and
// moves a PENDING_DETAILS owner to PENDING_APPROVAL. Staff accounts keep
// their status.
func (h *OnboardingHandler) CompleteProfile(c echo.Context) error {
	log := logger.FromContext(c)

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name          string `json:"name"`
		ContactNumber string `json:"contact_number"`
		NICFront      string `json:"nic_front"`
		NICBack       string `json:"nic_back"`
		BusinessReg   string `json:"business_reg"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	if result := h.DB.First(&user, claims.UserID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.ContactNumber != "" {
		updates["contact_number"] = req.ContactNumber
	}
	if req.NICFront != "" {
		updates["nic_front"] = req.NICFront
	}
	if req.NICBack != "" {
		updates["nic_back"] = req.NICBack
	}
	if req.BusinessReg != "" {
		updates["business_reg"] = req.BusinessReg
	}

	// Only owners walk the approval workflow; everyone else keeps status.
	if user.Role == permission.RoleSalonOwner {
		next, err := onboarding.SubmitProfile(user.Status)
		if err != nil {
			log.Warn("Profile submission in invalid state",
				zap.Uint("user_id", user.ID),
				zap.String("status", user.Status))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "profile cannot be submitted in the current account state"})
		}
		updates["status"] = next
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Error("Profile update failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	prometheus.RecordOnboardingTransition("submit_profile")
	log.Info("Profile completed",
		zap.Uint("user_id", user.ID),
		zap.String("status", user.Status))

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "user": user})
}

// ListRequests returns the salon owners that are not yet active, for the
// administrator's approval queue.
func (h *OnboardingHandler) ListRequests(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var requests []model.User
	result := h.DB.Where("role = ? AND status <> ?", permission.RoleSalonOwner, permission.StatusActive).
		Order("created_at DESC").
		Find(&requests)
	if result.Error != nil {
		log.Error("Failed to fetch approval requests", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch requests"})
	}

	prometheus.PendingApprovalsGauge.Set(float64(len(requests)))
	return c.JSON(http.StatusOK, requests)
}

// Approve activates an owner awaiting approval and their salon. Approving
// an already active owner changes nothing.
func (h *OnboardingHandler) Approve(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	if result := h.DB.First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	next, err := onboarding.Approve(user.Status)
	if err != nil {
		log.Warn("Approve in invalid state",
			zap.Uint("user_id", user.ID),
			zap.String("status", user.Status))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account cannot be approved in its current state"})
	}

	if next == user.Status {
		// Already active: idempotent, nothing to write.
		return c.JSON(http.StatusOK, echo.Map{"message": "account already active", "status": user.Status})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("status", next).Error; err != nil {
			return err
		}
		if user.SalonID != nil {
			return tx.Model(&model.Salon{}).Where("id = ?", *user.SalonID).
				Update("status", permission.SalonActive).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Approve transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approval failed"})
	}

	prometheus.RecordOnboardingTransition("approve")
	log.Info("Salon owner approved",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))

	return c.JSON(http.StatusOK, echo.Map{"message": "account approved", "status": next})
}

// Reject permanently deletes a pending owner and their salon. This is
// deliberate, irreversible cleanup: a rejected owner simply ceases to
// exist, and a second reject finds nothing.
func (h *OnboardingHandler) Reject(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var user model.User
	if result := h.DB.First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if !onboarding.CanReject(user.Status) {
		log.Warn("Reject in invalid state",
			zap.Uint("user_id", user.ID),
			zap.String("status", user.Status))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account cannot be rejected in its current state"})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if user.SalonID != nil {
			if err := tx.Delete(&model.Salon{}, *user.SalonID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.User{}, user.ID).Error
	})
	if err != nil {
		log.Error("Reject transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rejection failed"})
	}

	prometheus.RecordOnboardingTransition("reject")
	log.Info("Salon owner rejected and removed",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))

	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected and data removed"})
}
