package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gtfsreview/backend/internal/infrastructure/auth"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Admin auth context keys
const (
	AdminClaimsKey = "admin_claims"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AdminAuthenticator validates admin bearer tokens
type AdminAuthenticator interface {
	Enabled() bool
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AdminAuth protects the admin routes with the admin's bearer token. When
// admin authentication is not configured every request passes.
func AdminAuth(authenticator AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticator.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing or malformed authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			message := "Invalid token"
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				code, message = dto.ErrCodeTokenExpired, "Token has expired"
			case errors.Is(err, auth.ErrTokenRevoked):
				message = "Token has been revoked"
			case !isTokenError(err):
				logger.GetGinLogger(c).Error("Token check failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
				return
			}
			logger.GetGinLogger(c).Debug("Admin token rejected", zap.Error(err))
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(AdminClaimsKey, claims)
		c.Next()
	}
}

func isTokenError(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidToken, auth.ErrExpiredToken, auth.ErrTokenNotYetValid,
		auth.ErrInvalidClaims, auth.ErrTokenRevoked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetAdminClaims returns the claims set by AdminAuth, nil when admin
// authentication is disabled
func GetAdminClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(AdminClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
