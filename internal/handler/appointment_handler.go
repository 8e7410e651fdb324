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

// AppointmentHandler books and manages appointments within a salon.
type AppointmentHandler struct {
	DB *gorm.DB
}

func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

func (h *AppointmentHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "list")

	claims := middleware.ClaimsFromContext(c)
	scoped, err := scope.ForRead(h.DB, claims, viewAsParam(c), log)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var appointments []model.Appointment
	if result := scoped.Order("scheduled_at DESC").Find(&appointments); result.Error != nil {
		log.Error("Failed to fetch appointments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch appointments"})
	}

	return c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "create")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CustomerID  uint      `json:"customer_id"`
		StaffID     uint      `json:"staff_id"`
		ServiceID   uint      `json:"service_id"`
		ScheduledAt time.Time `json:"scheduled_at"`
		SalonID     *uint     `json:"salon_id,omitempty"` // admin only
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CustomerID == 0 || req.StaffID == 0 || req.ServiceID == 0 || req.ScheduledAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer, staff, service and time are required"})
	}

	salonID, err := scope.SalonIDForCreate(claims, req.SalonID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	// The service must belong to this salon; looking it up through the
	// salon filter also keeps foreign services out of the booking.
	defer prometheus.TrackDBOperation("query")(time.Now())
	var service model.Service
	if result := h.DB.Where("salon_id = ?", salonID).First(&service, req.ServiceID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		log.Error("Service lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create appointment"})
	}

	appointment := model.Appointment{
		SalonID:         salonID,
		CustomerID:      req.CustomerID,
		StaffID:         req.StaffID,
		ServiceID:       service.ID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: service.DurationMinutes,
		Status:          "confirmed",
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&appointment); result.Error != nil {
		log.Error("Failed to create appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create appointment"})
	}

	log.Info("Appointment booked",
		zap.Uint("appointment_id", appointment.ID),
		zap.Uint("salon_id", salonID),
		zap.Uint("service_id", service.ID))

	return c.JSON(http.StatusCreated, echo.Map{"message": "appointment created", "appointment": appointment})
}

func (h *AppointmentHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "update")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	var appointment model.Appointment
	if result := scoped.First(&appointment, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		log.Error("Appointment lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update appointment"})
	}

	var req struct {
		StaffID     *uint      `json:"staff_id"`
		ScheduledAt *time.Time `json:"scheduled_at"`
		Status      *string    `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.StaffID != nil {
		updates["staff_id"] = *req.StaffID
	}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
	}
	if req.Status != nil {
		switch *req.Status {
		case "confirmed", "completed", "cancelled", "no_show":
			updates["status"] = *req.Status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown appointment status"})
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.DB.Model(&appointment).Updates(updates).Error; err != nil {
		log.Error("Failed to update appointment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update appointment"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "appointment updated", "appointment": appointment})
}

func (h *AppointmentHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "delete")

	claims := middleware.ClaimsFromContext(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	scoped, err := scope.ForWrite(h.DB, claims)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := scoped.Delete(&model.Appointment{}, id)
	if result.Error != nil {
		log.Error("Failed to delete appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete appointment"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}
