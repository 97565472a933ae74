package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"trackii-backend/internal/auth"
	"trackii-backend/internal/config"
	"trackii-backend/internal/models"
	"trackii-backend/internal/server"
	"trackii-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupPlantDB(t)
	cfg := &config.Config{
		JWTSecret:   testutil.JWTSecret,
		CORSOrigins: "http://localhost:5173",
	}
	return &testServer{t: t, db: db, app: server.New(cfg, db, zap.NewNop())}
}

func (s *testServer) token(username, deviceUID string) string {
	s.t.Helper()
	var user models.User
	require.NoError(s.t, s.db.Where("username = ?", username).First(&user).Error)

	var device *models.Device
	if deviceUID != "" {
		device = &models.Device{}
		require.NoError(s.t, s.db.Where("device_uid = ?", deviceUID).First(device).Error)
	}

	tok, err := auth.GenerateToken(testutil.JWTSecret, &user, device, 0)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (s *testServer) doList(method, path, token string) (int, []map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out []map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterScanOverHTTP(t *testing.T) {
	s := newTestServer(t)
	l1 := s.token("op1", "D-L1")
	l2 := s.token("op1", "D-L2")

	status, body := s.do(http.MethodPost, "/api/scanner/register", l1, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 100,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["step_number"])
	assert.Equal(t, false, body["is_final_step"])

	status, body = s.do(http.MethodPost, "/api/scanner/register", l2, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 150,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "QUANTITY_EXCEEDS_UPSTREAM", body["kind"])

	status, body = s.do(http.MethodPost, "/api/scanner/register", l2, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 100,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["is_final_step"])
}

func TestRegisterScanStatusMapping(t *testing.T) {
	s := newTestServer(t)
	l1 := s.token("op1", "D-L1")

	cases := []struct {
		name   string
		token  string
		body   any
		status int
		kind   string
	}{
		{"validation", l1, fiber.Map{"wo_number": "WO1", "part_number": "P1", "quantity": 0}, http.StatusBadRequest, "VALIDATION"},
		{"unknown part", l1, fiber.Map{"wo_number": "WO1", "part_number": "NOPE", "quantity": 1}, http.StatusNotFound, "PART_NOT_REGISTERED"},
		{"empty route", l1, fiber.Map{"wo_number": "WO1", "part_number": "P-EMPTY", "quantity": 1}, http.StatusConflict, "ROUTE_NOT_CONFIGURED"},
		{"inactive device", s.token("op1", "D-OFF"), fiber.Map{"wo_number": "WO1", "part_number": "P1", "quantity": 1}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not intake", s.token("op1", "D-L2"), fiber.Map{"wo_number": "WO1", "part_number": "P1", "quantity": 1}, http.StatusNotFound, "ORDER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(http.MethodPost, "/api/scanner/register", tc.token, tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestScannerAuthentication(t *testing.T) {
	s := newTestServer(t)
	scan := fiber.Map{"wo_number": "WO1", "part_number": "P1", "quantity": 1}

	status, _ := s.do(http.MethodPost, "/api/scanner/register", "", scan)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/scanner/register", "not-a-jwt", scan)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Supervisor token without a device can read but not scan.
	boss := s.token("boss", "")
	status, _ = s.do(http.MethodPost, "/api/scanner/register", boss, scan)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.doList(http.MethodGet, "/api/scanner/error-categories", boss)
	assert.Equal(t, http.StatusOK, status)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/scanner/scrap", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token("op1", "D-L1"))

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScrapAndReworkOverHTTP(t *testing.T) {
	s := newTestServer(t)
	l1 := s.token("op1", "D-L1")

	status, _ := s.do(http.MethodPost, "/api/scanner/register", l1, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 10,
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodPost, "/api/scanner/register", l1, fiber.Map{
		"wo_number": "WO2", "part_number": "P2", "quantity": 10,
	})
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(http.MethodPost, "/api/scanner/rework", l1, fiber.Map{
		"wo_number": "WO1", "quantity": 1, "reason": "bent pin",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, string(models.WipHold), body["status"])

	status, body = s.do(http.MethodPost, "/api/scanner/register", s.token("op1", "D-L2"), fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 10,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "UNIT_ON_HOLD", body["kind"])

	status, body = s.do(http.MethodGet, "/api/scanner/work-orders/WO1/unit", l1, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, string(models.WipHold), body["unit_status"])
	assert.Equal(t, true, body["can_release"])

	status, body = s.do(http.MethodGet, "/api/scanner/work-orders/WO-NONE/unit", l1, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", body["kind"])

	status, body = s.do(http.MethodPost, "/api/scanner/scrap", l1, fiber.Map{
		"wo_number": "WO2", "part_number": "P2", "quantity": 10,
		"error_code_id": testutil.ErrorCodeID(t, s.db, "E01"),
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = s.do(http.MethodPost, "/api/scanner/scrap", l1, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 1,
		"error_code_id": 9999,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ERROR_CODE_NOT_FOUND", body["kind"])
}

func TestContextAndPartLookup(t *testing.T) {
	s := newTestServer(t)
	tok := s.token("op1", "D-CUT")

	status, body := s.do(http.MethodGet, "/api/scanner/work-orders/WO9/context?partNumber=P3", tok, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["is_new"])
	assert.Equal(t, "R-LONG", body["route_name"])

	status, body = s.do(http.MethodGet, "/api/scanner/work-orders/WO9/context", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", body["kind"])

	status, body = s.do(http.MethodGet, "/api/scanner/part/P3", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "CUT", body["first_location"])
	assert.Equal(t, "WELD", body["second_location"])
}

func TestErrorCatalogOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := s.token("op1", "D-L1")

	status, cats := s.doList(http.MethodGet, "/api/scanner/error-categories", tok)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, cats, 2)

	visualID := cats[1]["id"].(float64)
	status, codes := s.doList(http.MethodGet, "/api/scanner/error-categories/"+strconv.FormatUint(uint64(visualID), 10)+"/codes", tok)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, codes, 2)

	status, _ = s.do(http.MethodGet, "/api/scanner/error-categories/abc/codes", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestScanEventsRequireSupervisor(t *testing.T) {
	s := newTestServer(t)
	op := s.token("op1", "D-L1")

	status, _ := s.do(http.MethodPost, "/api/scanner/register", op, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 5,
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodPost, "/api/scanner/register", op, fiber.Map{
		"wo_number": "WO1", "part_number": "P1", "quantity": 5,
	})
	require.Equal(t, http.StatusConflict, status)

	status, _ = s.doList(http.MethodGet, "/api/scan-events", op)
	assert.Equal(t, http.StatusForbidden, status)

	boss := s.token("boss", "")
	status, events := s.doList(http.MethodGet, "/api/scan-events", boss)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 2)
	assert.Equal(t, "ERROR", events[0]["scan_type"])
	assert.Equal(t, "ENTRY", events[1]["scan_type"])

	status, events = s.doList(http.MethodGet, "/api/scan-events?scan_type=ENTRY", boss)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, events, 1)

	status, _ = s.do(http.MethodGet, "/api/scan-events?scan_type=BOGUS", boss, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(http.MethodGet, "/api/auth/me", s.token("op1", "D-WELD"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "op1", body["username"])
	device, ok := body["device"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "WELD", device["location"])
}
