package main

import (
	"salon-service/internal/handler"
	"salon-service/internal/middleware"
	"salon-service/internal/onboarding"
	"salon-service/internal/permission"
	"salon-service/pkg/config"
	"salon-service/pkg/database"
	"salon-service/pkg/jwtutil"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting salon service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("Database connection established")

	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	resolver := permission.NewResolver(permission.NewGormRoleSource(db))
	pipeline := middleware.NewPipeline()

	// Background purge of stale registrations
	cleaner := onboarding.NewCleaner(db, cfg.Cleanup.PendingMaxAge, log)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cleanup.Schedule, cleaner.Run); err != nil {
		log.Fatal("Failed to schedule registration cleanup", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(db, jwtUtil, resolver)
	onboardingHandler := handler.NewOnboardingHandler(db)
	salonHandler := handler.NewSalonHandler(db)
	branchHandler := handler.NewBranchHandler(db)
	staffHandler := handler.NewStaffHandler(db)
	roleHandler := handler.NewRoleHandler(db)
	serviceHandler := handler.NewServiceHandler(db)
	appointmentHandler := handler.NewAppointmentHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.Authorize(jwtUtil, pipeline))

	// Public routes - the authorization pipeline lets these through
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// Owner onboarding
	owner := e.Group("/api/owner")
	owner.PATCH("/profile", onboardingHandler.CompleteProfile)

	// Administrator approval workflow and tenant overview
	admin := e.Group("/api/admin")
	admin.GET("/requests", onboardingHandler.ListRequests)
	admin.POST("/requests/:id/approve", onboardingHandler.Approve)
	admin.POST("/requests/:id/reject", onboardingHandler.Reject)
	admin.GET("/salons", salonHandler.List)
	admin.GET("/salons/:id", salonHandler.Get)

	// Tenant-scoped resources
	e.GET("/api/salon", salonHandler.Mine)

	branches := e.Group("/api/branches")
	branches.GET("", branchHandler.List)
	branches.POST("", branchHandler.Create)
	branches.PATCH("/:id", branchHandler.Update)
	branches.DELETE("/:id", branchHandler.Delete)

	staff := e.Group("/api/staff")
	staff.GET("", staffHandler.List)
	staff.POST("", staffHandler.Create)
	staff.PATCH("/:id", staffHandler.Update)
	staff.DELETE("/:id", staffHandler.Delete)

	roles := e.Group("/api/roles")
	roles.GET("", roleHandler.List)
	roles.POST("", roleHandler.Create)
	roles.PATCH("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)

	services := e.Group("/api/services")
	services.GET("", serviceHandler.List)
	services.POST("", serviceHandler.Create)
	services.PATCH("/:id", serviceHandler.Update)
	services.DELETE("/:id", serviceHandler.Delete)

	appointments := e.Group("/api/appointments")
	appointments.GET("", appointmentHandler.List)
	appointments.POST("", appointmentHandler.Create)
	appointments.PATCH("/:id", appointmentHandler.Update)
	appointments.DELETE("/:id", appointmentHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
