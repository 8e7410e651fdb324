package middleware

import (
	"strings"

	"salon-service/pkg/jwtutil"
	"salon-service/pkg/logger"
	"salon-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie browsers carry the session token in. API
// clients may use a Bearer header instead.
const SessionCookieName = "session"

const claimsContextKey = "claims"

// ClaimsFromContext returns the session claims stored by the pipeline
// middleware, or nil for an unauthenticated request.
func ClaimsFromContext(c echo.Context) *jwtutil.SessionClaims {
	claims, _ := c.Get(claimsContextKey).(*jwtutil.SessionClaims)
	return claims
}

// extractToken pulls the raw session token from the cookie or, failing that,
// the Authorization header.
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// Authorize decodes the session token and runs the gate pipeline. Allowed
// requests continue with the claims stored in the echo context; denied
// requests terminate here with the gate's redirect or JSON response.
func Authorize(jwtUtil *jwtutil.JWTUtil, pipeline *Pipeline) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			var claims *jwtutil.SessionClaims
			if token := extractToken(c); token != "" {
				decoded, err := jwtUtil.ValidateToken(token)
				if err != nil {
					// Invalid and absent tokens are the same to the pipeline.
					log.Debug("Session token rejected", zap.Error(err))
				} else {
					claims = decoded
				}
			}

			req := &Request{
				Method: c.Request().Method,
				Path:   c.Request().URL.Path,
				Claims: claims,
			}

			verdict, gateName := pipeline.Evaluate(req)
			if !verdict.Allowed {
				prometheus.RecordGateDenial(gateName)
				log.Info("Request denied by authorization pipeline",
					zap.String("gate", gateName),
					zap.String("path", req.Path),
					zap.Int("status", verdict.Status))
				if verdict.RedirectTo != "" {
					return c.Redirect(verdict.Status, verdict.RedirectTo)
				}
				return c.JSON(verdict.Status, echo.Map{"error": verdict.Message})
			}

			if claims != nil {
				c.Set(claimsContextKey, claims)
			}
			return next(c)
		}
	}
}
