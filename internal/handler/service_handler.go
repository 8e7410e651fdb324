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

// ServiceHandler manages the salon's bookable service menu.
type ServiceHandler struct {
	DB *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{DB: db}
}

func (h *ServiceHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("service", "list")

	claims := middleware.ClaimsFromContext(c)
	scoped, err := scope.ForRead(h.DB, claims, viewAsParam(c), log)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var services []model.Service
	if result := scoped.Order("created_at DESC").Find(&services); result.Error != nil {
		log.Error("Failed to fetch services", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch services"})
	}

	return c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("service", "create")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		PriceCents      int64  `json:"price_cents"`
		DurationMinutes int    `json:"duration_minutes"`
		SalonID         *uint  `json:"salon_id,omitempty"` // admin only
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service name is required"})
	}
	if req.DurationMinutes <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be positive"})
	}

	salonID, err := scope.SalonIDForCreate(claims, req.SalonID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	service := model.Service{
		SalonID:         salonID,
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&service); result.Error != nil {
		log.Error("Failed to create service", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "service created", "service": service})
}

func (h *ServiceHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("service", "update")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var service model.Service
	if result := scoped.First(&service, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		log.Error("Service lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update service"})
	}

	var req struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		PriceCents      *int64  `json:"price_cents"`
		DurationMinutes *int    `json:"duration_minutes"`
		Active          *bool   `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be positive"})
		}
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.DB.Model(&service).Updates(updates).Error; err != nil {
		log.Error("Failed to update service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update service"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "service updated", "service": service})
}

func (h *ServiceHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("service", "delete")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := scoped.Delete(&model.Service{}, id)
	if result.Error != nil {
		log.Error("Failed to delete service", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete service"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "service deleted"})
}
