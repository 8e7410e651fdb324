package handler

import (
	"errors"
	"net/http"
	"time"

	"salon-service/internal/middleware"
	"salon-service/internal/model"
	"salon-service/internal/permission"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SalonHandler exposes the administrator's view over all tenants and lets an
// owner read their own salon record.
type SalonHandler struct {
	DB *gorm.DB
}

func NewSalonHandler(db *gorm.DB) *SalonHandler {
	return &SalonHandler{DB: db}
}

// List returns all salons. Administrator only; the route guard enforces the
// role, this is a second check.
func (h *SalonHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("salon", "list")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || claims.Role != permission.RoleSuperAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var salons []model.Salon
	if result := h.DB.Order("created_at DESC").Find(&salons); result.Error != nil {
		log.Error("Failed to fetch salons", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch salons"})
	}

	return c.JSON(http.StatusOK, salons)
}

func (h *SalonHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("salon", "get")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || claims.Role != permission.RoleSuperAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var salon model.Salon
	if result := h.DB.First(&salon, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salon not found"})
		}
		log.Error("Salon lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch salon"})
	}

	return c.JSON(http.StatusOK, salon)
}

// Mine returns the authenticated owner's salon record.
func (h *SalonHandler) Mine(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("salon", "get")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil || claims.SalonID == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var salon model.Salon
	if result := h.DB.First(&salon, *claims.SalonID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salon not found"})
		}
		log.Error("Salon lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch salon"})
	}

	return c.JSON(http.StatusOK, salon)
}
