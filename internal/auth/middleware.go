package auth

import (
	"fmt"
	"strings"

	"trackii-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey   = "user_id"
	CtxDeviceIDKey = "device_id"
	CtxUserRoleKey = "user_role"
)

// JWTMiddleware only checks the token. Whether the user and the device are
// still active is decided per request by the tracking engine.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		tokenStr := parts[1]

		token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok || claims.UserID == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "could not read token claims")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxDeviceIDKey, claims.DeviceID)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from token")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed for this role")
	}
}

// RequireDevice rejects tokens that were not issued for a scanner device.
func RequireDevice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(CtxDeviceIDKey).(uint); !ok || id == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "token is not bound to a device")
		}
		return c.Next()
	}
}

// Identity returns the user and device ids stored by JWTMiddleware.
func Identity(c *fiber.Ctx) (userID, deviceID uint) {
	userID, _ = c.Locals(CtxUserIDKey).(uint)
	deviceID, _ = c.Locals(CtxDeviceIDKey).(uint)
	return userID, deviceID
}
