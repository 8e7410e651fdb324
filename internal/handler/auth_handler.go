package handler

import (
	"errors"
	"net/http"
	"time"

	"salon-service/internal/middleware"
	"salon-service/internal/model"
	"salon-service/internal/permission"
	"salon-service/pkg/jwtutil"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler owns login, registration and session refresh.
type AuthHandler struct {
	DB       *gorm.DB
	JWT      *jwtutil.JWTUtil
	Resolver *permission.Resolver
}

func NewAuthHandler(db *gorm.DB, jwtUtil *jwtutil.JWTUtil, resolver *permission.Resolver) *AuthHandler {
	return &AuthHandler{DB: db, JWT: jwtUtil, Resolver: resolver}
}

// Login verifies credentials, resolves the caller's permission set and
// issues a session token. The failure response is the same generic message
// whether the email is unknown or the password wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.DB.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("User lookup failed", zap.Error(result.Error))
			prometheus.RecordAuthError("db_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		// Same response as a wrong password: don't reveal which it was.
		log.Info("Login failed", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Info("Login failed", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.issueToken(&user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	h.setSessionCookie(c, token)

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("status", user.Status))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"email":    user.Email,
			"role":     user.Role,
			"status":   user.Status,
			"salon_id": user.SalonID,
		},
	})
}

// Register creates a salon owner account and its salon record. The owner
// starts in PENDING_DETAILS and must complete their profile before an
// administrator can approve them.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := h.DB.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Info("Registration for existing email", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	// The user, the salon and the link between them are created inside one
	// transaction so a crash cannot leave an orphaned half of the pair.
	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         permission.RoleSalonOwner,
		Status:       permission.StatusPendingDetails,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}

		salon := model.Salon{
			Name:    req.Name + "'s Salon",
			OwnerID: user.ID,
			Email:   req.Email,
			Status:  permission.SalonPending,
		}
		if result := tx.Create(&salon); result.Error != nil {
			return result.Error
		}

		return tx.Model(&user).Update("salon_id", salon.ID).Error
	})
	if err != nil {
		log.Error("Registration transaction failed", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Salon owner registered",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user": map[string]interface{}{
			"id":     user.ID,
			"email":  user.Email,
			"status": user.Status,
		},
	})
}

// Refresh re-resolves the caller's permission set and reissues the session
// token. Permissions are otherwise cached in the token until the next login;
// this is the escape hatch when a custom role was just edited.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromContext(c)

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		prometheus.RecordAuthError("missing_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := h.DB.First(&user, claims.UserID); result.Error != nil {
		log.Info("Refresh for missing user", zap.Uint("user_id", claims.UserID))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
	}

	token, err := h.issueToken(&user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	h.setSessionCookie(c, token)

	log.Info("Session refreshed", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; the server keeps no session state to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	prometheus.DecreaseActiveTokens()
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) issueToken(user *model.User) (string, error) {
	perms, err := h.Resolver.Resolve(user.Role, user.SalonID)
	if err != nil {
		return "", err
	}
	return h.JWT.GenerateToken(user.ID, user.Email, user.Role, user.SalonID, user.Status, perms)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
