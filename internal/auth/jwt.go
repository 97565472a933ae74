package auth

import (
	"errors"
	"time"

	"trackii-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 12 * time.Hour // one shift plus overtime

// JWTCustomClaims binds a token to one user on one scanner device.
type JWTCustomClaims struct {
	UserID   uint            `json:"user_id"`
	DeviceID uint            `json:"device_id"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.User, device *models.Device, ttl time.Duration) (string, error) {
	if user == nil {
		return "", errors.New("user is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	claims := &JWTCustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if device != nil {
		claims.DeviceID = device.ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
