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
	"gorm.io/gorm"
)

// RoleHandler manages salon-scoped custom roles. Staff assigned one of these
// roles get its permission list (plus the profile baseline) stamped into
// their session token at login.
type RoleHandler struct {
	DB *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{DB: db}
}

func (h *RoleHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("role", "list")

	claims := middleware.ClaimsFromContext(c)
	scoped, err := scope.ForRead(h.DB, claims, viewAsParam(c), log)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var roles []model.Role
	if result := scoped.Order("created_at DESC").Find(&roles); result.Error != nil {
		log.Error("Failed to fetch roles", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch roles"})
	}

	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("role", "create")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || !claims.HasPermission(permission.StaffManage) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Permissions []string `json:"permissions"`
		SalonID     *uint    `json:"salon_id,omitempty"` // admin only
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role name is required"})
	}
	for _, p := range req.Permissions {
		if !permission.IsKnown(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown permission: " + p})
		}
	}

	salonID, err := scope.SalonIDForCreate(claims, req.SalonID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	// Name uniqueness is per salon; two salons can both have a "Cashier".
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Role
	if result := h.DB.Where("salon_id = ? AND name = ?", salonID, req.Name).First(&existing); result.Error == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role name already exists"})
	}

	role := model.Role{
		SalonID:     salonID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&role); result.Error != nil {
		log.Error("Failed to create role", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create role"})
	}

	log.Info("Custom role created",
		zap.Uint("role_id", role.ID),
		zap.Uint("salon_id", salonID),
		zap.String("name", role.Name))

	return c.JSON(http.StatusCreated, echo.Map{"message": "role created", "role": role})
}

func (h *RoleHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("role", "update")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || !claims.HasPermission(permission.StaffManage) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var role model.Role
	if result := scoped.First(&role, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		log.Error("Role lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}

	var req struct {
		Description *string  `json:"description"`
		Permissions []string `json:"permissions"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	for _, p := range req.Permissions {
		if !permission.IsKnown(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown permission: " + p})
		}
	}

	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		role.Permissions = req.Permissions
	}

	// Changed permissions take effect for each staff member at their next
	// login or token refresh, not immediately.
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.DB.Save(&role).Error; err != nil {
		log.Error("Failed to update role", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "role": role})
}

func (h *RoleHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("role", "delete")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || !claims.HasPermission(permission.StaffManage) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var role model.Role
	if result := scoped.First(&role, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		log.Error("Role lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete role"})
	}
	if role.IsSystemRole {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "system roles cannot be deleted"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.DB.Delete(&role).Error; err != nil {
		log.Error("Failed to delete role", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete role"})
	}

	log.Info("Custom role deleted", zap.Uint("role_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "role deleted"})
}
