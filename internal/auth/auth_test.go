package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trackii-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "auth-test-secret-0123456789abcdef"

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddleware(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		userID, deviceID := Identity(c)
		return c.JSON(fiber.Map{"user_id": userID, "device_id": deviceID})
	})
	app.Get("/scan", RequireDevice(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	app.Get("/supervise", RequireRole(models.RoleSupervisor), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Username: "op1", Role: models.RoleOperator}
	device := &models.Device{ID: 3}

	tok, err := GenerateToken(testSecret, user, device, time.Hour)
	require.NoError(t, err)

	claims := &JWTCustomClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(3), claims.DeviceID)
	assert.Equal(t, models.RoleOperator, claims.Role)
	assert.Equal(t, "op1", claims.Subject)

	_, err = GenerateToken(testSecret, nil, device, time.Hour)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	app := newTestApp()
	operator := &models.User{ID: 1, Username: "op1", Role: models.RoleOperator}
	boss := &models.User{ID: 2, Username: "boss", Role: models.RoleSupervisor}
	device := &models.Device{ID: 9}

	opToken, err := GenerateToken(testSecret, operator, device, time.Hour)
	require.NoError(t, err)
	bossToken, err := GenerateToken(testSecret, boss, nil, time.Hour)
	require.NoError(t, err)
	foreign, err := GenerateToken("some-other-secret-0123456789abcdef", operator, device, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, operator, device, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/whoami", "", http.StatusUnauthorized},
		{"wrong secret", "/whoami", foreign, http.StatusUnauthorized},
		{"expired", "/whoami", expired, http.StatusUnauthorized},
		{"valid", "/whoami", opToken, http.StatusOK},
		{"device bound", "/scan", opToken, http.StatusNoContent},
		{"no device", "/scan", bossToken, http.StatusUnauthorized},
		{"operator not supervisor", "/supervise", opToken, http.StatusForbidden},
		{"supervisor", "/supervise", bossToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, get(t, app, tc.path, tc.token))
		})
	}
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
