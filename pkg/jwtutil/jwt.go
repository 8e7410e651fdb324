package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"salon-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims represents the JWT claims carried by a salon platform session.
// The permission set is resolved once at login and cached here; edits to a
// custom role take effect only after the holder re-authenticates.
type SessionClaims struct {
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	SalonID     *uint    `json:"salon_id,omitempty"` // nil for SUPER_ADMIN and unlinked users
	Status      string   `json:"status"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the cached permission set contains perm.
func (c *SessionClaims) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// JWTUtil signs and verifies session tokens. The signing key is process-wide
// configuration; rotating it invalidates all outstanding sessions.
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: cfg,
	}
}

// GenerateToken creates a signed session token for the given identity.
func (j *JWTUtil) GenerateToken(userID uint, email, role string, salonID *uint, status string, permissions []string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := SessionClaims{
		UserID:      userID,
		Email:       email,
		Role:        role,
		SalonID:     salonID,
		Status:      status,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses a session token. It returns an error for
// missing, expired or tampered tokens.
func (j *JWTUtil) ValidateToken(tokenString string) (*SessionClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
