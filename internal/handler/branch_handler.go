package handler

import (
	"errors"
	"net/http"
	"time"

	"salon-service/internal/middleware"
	"salon-service/internal/model"
	"salon-service/internal/scope"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BranchHandler owns CRUD for salon branches. Every query runs through the
// tenant scope rules; a branch outside the caller's salon is a 404, never a
// hint that it exists.
type BranchHandler struct {
	DB *gorm.DB
}

func NewBranchHandler(db *gorm.DB) *BranchHandler {
	return &BranchHandler{DB: db}
}

func (h *BranchHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("branch", "list")

	claims := middleware.ClaimsFromContext(c)
	scoped, err := scope.ForRead(h.DB, claims, viewAsParam(c), log)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var branches []model.Branch
	if result := scoped.Order("created_at DESC").Find(&branches); result.Error != nil {
		log.Error("Failed to fetch branches", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch branches"})
	}

	return c.JSON(http.StatusOK, branches)
}

func (h *BranchHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("branch", "create")

	claims := middleware.ClaimsFromContext(c)

	var req struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		Address       string `json:"address"`
		ContactNumber string `json:"contact_number"`
		Email         string `json:"email"`
		Active        bool   `json:"active"`
		SalonID       *uint  `json:"salon_id,omitempty"` // admin only
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	salonID, err := scope.SalonIDForCreate(claims, req.SalonID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	status := "INACTIVE"
	if req.Active {
		status = "ACTIVE"
	}

	branch := model.Branch{
		SalonID:       salonID,
		Name:          req.Name,
		Type:          req.Type,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Status:        status,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&branch); result.Error != nil {
		log.Error("Failed to create branch", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create branch"})
	}

	log.Info("Branch created",
		zap.Uint("branch_id", branch.ID),
		zap.Uint("salon_id", branch.SalonID),
		zap.String("name", branch.Name))

	return c.JSON(http.StatusCreated, echo.Map{"message": "branch created", "branch": branch})
}

func (h *BranchHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("branch", "update")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid branch ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var branch model.Branch
	if result := scoped.First(&branch, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "branch not found"})
		}
		log.Error("Branch lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update branch"})
	}

	var req struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		Address       string `json:"address"`
		ContactNumber string `json:"contact_number"`
		Email         string `json:"email"`
		Active        *bool  `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.ContactNumber != "" {
		updates["contact_number"] = req.ContactNumber
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Active != nil {
		if *req.Active {
			updates["status"] = "ACTIVE"
		} else {
			updates["status"] = "INACTIVE"
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.DB.Model(&branch).Updates(updates).Error; err != nil {
		log.Error("Failed to update branch", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update branch"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "branch updated", "branch": branch})
}

// Delete removes a branch permanently. There is no soft delete or undo;
// callers confirm before invoking this.
func (h *BranchHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("branch", "delete")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid branch ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := scoped.Delete(&model.Branch{}, id)
	if result.Error != nil {
		log.Error("Failed to delete branch", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete branch"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "branch not found"})
	}

	log.Info("Branch deleted", zap.Uint("branch_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "branch deleted"})
}
