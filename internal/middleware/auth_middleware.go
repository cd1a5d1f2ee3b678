package middleware

import (
	"strings"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	RoleKey             = "role"
)

// Protected requires a valid bearer token and stores uid and role in the request locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewUnauthorizedError("Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("Token is empty")
		}

		claims, err := authService.ValidateJWT(c.Context(), tokenString)
		if err != nil {
			return domain.NewError(domain.CodeUnauthorized, "Invalid or expired token", err)
		}

		c.Locals(UserIDKey, claims.UID)
		c.Locals(RoleKey, claims.Role)
		return c.Next()
	}
}

// RequireAdmin must run after Protected.
func RequireAdmin(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(RoleKey).(string)
		if role == "" || role != adminRole {
			logger.Get().Warn("admin route denied",
				zap.String("path", c.Path()),
				zap.String("uid", UserID(c)),
				zap.String("role", role))
			return domain.NewForbiddenError("Admin role required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated uid, or "" on unprotected routes.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDKey).(string)
	return uid
}
