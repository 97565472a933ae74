package auth

import (
	"trackii-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MeHandler returns the user and scanner device the token was issued for.
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, deviceID := Identity(c)

		var user models.User
		if err := db.WithContext(c.UserContext()).
			Where("id = ? AND active = ?", userID, true).
			First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid user")
		}

		response := fiber.Map{
			"user_id":  user.ID,
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
		}

		if deviceID != 0 {
			var device models.Device
			if err := db.WithContext(c.UserContext()).
				Preload("Location").
				Where("id = ? AND active = ?", deviceID, true).
				First(&device).Error; err == nil {
				d := fiber.Map{
					"id":          device.ID,
					"device_uid":  device.DeviceUID,
					"name":        device.Name,
					"location_id": device.LocationID,
				}
				if device.Location != nil {
					d["location"] = device.Location.Name
				}
				response["device"] = d
			}
		}

		return c.JSON(response)
	}
}
