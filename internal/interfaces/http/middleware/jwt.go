package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
	AdminRole() string
}

// AdminAuth requires a valid bearer token carrying the admin role. When no
// admin role is configured any valid token is accepted.
func AdminAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	role := validator.AdminRole()

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortAuth(c, log, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortAuth(c, log, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			code, msg := dto.ErrCodeTokenInvalid, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, msg = dto.ErrCodeTokenExpired, "Token has expired"
			}
			abortAuth(c, log, http.StatusUnauthorized, code, msg, err)
			return
		}
		if role != "" && !claims.HasRole(role) {
			abortAuth(c, log, http.StatusForbidden, dto.ErrCodeForbidden, "Operator role required", nil)
			return
		}

		c.Set(JWTClaimsKey, claims)

		// Tag the request logger with the operator
		ctx := c.Request.Context()
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("operator", claims.Subject)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortAuth(c *gin.Context, log *zap.Logger, status int, code, message string, err error) {
	log.Warn("Admin authentication failed",
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
