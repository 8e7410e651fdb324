package handler

import (
	"errors"
	"net/http"
	"time"

	"salon-service/internal/middleware"
	"salon-service/internal/model"
	"salon-service/internal/permission"
	"salon-service/internal/scope"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffHandler owns user management inside a salon: the owner (or the
// administrator) creates, edits and removes staff identities. The privilege
// escalation guard lives here: an owner can never mint another owner or an
// administrator.
type StaffHandler struct {
	DB *gorm.DB
}

func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{DB: db}
}

func (h *StaffHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("staff", "list")

	claims := middleware.ClaimsFromContext(c)
	scoped, err := scope.ForRead(h.DB, claims, viewAsParam(c), log)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if result := scoped.Order("created_at DESC").Find(&users); result.Error != nil {
		log.Error("Failed to fetch staff", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}

	return c.JSON(http.StatusOK, users)
}

func (h *StaffHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("staff", "create")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		ContactNumber string `json:"contact_number"`
		Password      string `json:"password"`
		Role          string `json:"role"`
		SalonID       *uint  `json:"salon_id,omitempty"` // admin only
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and role are required"})
	}

	if claims.Role != permission.RoleSuperAdmin && claims.Role != permission.RoleSalonOwner {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	// Escalation guard: the identity must not be created at all.
	if !scope.CanAssignRole(claims.Role, req.Role) {
		log.Warn("Blocked privilege escalation attempt",
			zap.Uint("requester_id", claims.UserID),
			zap.String("requester_role", claims.Role),
			zap.String("target_role", req.Role))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot create this role"})
	}

	salonID, err := scope.SalonIDForCreate(claims, req.SalonID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := h.DB.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	name := req.Name
	if name == "" {
		name = req.Email
	}

	// Staff inherit trust from the owner who created them: they start
	// ACTIVE and skip the approval workflow entirely.
	user := model.User{
		Name:          name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		PasswordHash:  string(hashed),
		Role:          req.Role,
		Status:        permission.StatusActive,
		SalonID:       &salonID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&user); result.Error != nil {
		log.Error("Failed to create staff user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	log.Info("Staff user created",
		zap.Uint("user_id", user.ID),
		zap.Uint("salon_id", salonID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusCreated, echo.Map{"message": "user created", "user": user})
}

func (h *StaffHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("staff", "update")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var user model.User
	if result := scoped.First(&user, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Staff lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	var req struct {
		Name          string `json:"name"`
		ContactNumber string `json:"contact_number"`
		Role          string `json:"role"`
		Password      string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.ContactNumber != "" {
		updates["contact_number"] = req.ContactNumber
	}
	if req.Role != "" && req.Role != user.Role {
		// The same guard applies to elevation of an existing identity.
		if !scope.CanAssignRole(claims.Role, req.Role) {
			log.Warn("Blocked privilege escalation attempt",
				zap.Uint("requester_id", claims.UserID),
				zap.String("requester_role", claims.Role),
				zap.String("target_role", req.Role))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot assign this role"})
		}
		updates["role"] = req.Role
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
		updates["password_hash"] = string(hashed)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to update staff user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user updated", "user": user})
}

// Delete removes a staff identity permanently.
func (h *StaffHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("staff", "delete")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || (claims.Role != permission.RoleSuperAdmin && claims.Role != permission.RoleSalonOwner) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := scoped.Delete(&model.User{}, id)
	if result.Error != nil {
		log.Error("Failed to delete staff user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("Staff user deleted", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
