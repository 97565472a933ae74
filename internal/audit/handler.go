package audit

import (
	"strconv"
	"time"

	"trackii-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type ScanEventResponse struct {
	ID          uint            `json:"id"`
	Ts          string          `json:"ts"`
	ScanType    models.ScanType `json:"scan_type"`
	WipItemID   *uint           `json:"wip_item_id"`
	RouteStepID *uint           `json:"route_step_id"`
	UserID      *uint           `json:"user_id"`
	DeviceID    *uint           `json:"device_id"`
	LocationID  *uint           `json:"location_id"`
	Reason      string          `json:"reason,omitempty"`
	RequestID   string          `json:"request_id"`
}

// GET /api/scan-events?wip_item_id=1&scan_type=ERROR&user_id=2&device_id=3&limit=50
func ListScanEventsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.WithContext(c.UserContext()).Model(&models.ScanEvent{})

		for param, column := range map[string]string{
			"wip_item_id": "wip_item_id",
			"user_id":     "user_id",
			"device_id":   "device_id",
		} {
			raw := c.Query(param)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
			}
			q = q.Where(column+" = ?", uint(id))
		}

		if st := c.Query("scan_type"); st != "" {
			switch models.ScanType(st) {
			case models.ScanEntry, models.ScanExit, models.ScanError:
				q = q.Where("scan_type = ?", st)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "invalid scan_type")
			}
		}

		if from := c.Query("from"); from != "" {
			t, err := time.Parse(time.RFC3339, from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from must be RFC3339")
			}
			q = q.Where("ts >= ?", t)
		}

		limit := c.QueryInt("limit", defaultPageSize)
		if limit <= 0 || limit > maxPageSize {
			limit = defaultPageSize
		}

		var events []models.ScanEvent
		if err := q.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list scan events")
		}

		resp := make([]ScanEventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, ScanEventResponse{
				ID:          e.ID,
				Ts:          e.Ts.UTC().Format(time.RFC3339),
				ScanType:    e.ScanType,
				WipItemID:   e.WipItemID,
				RouteStepID: e.RouteStepID,
				UserID:      e.UserID,
				DeviceID:    e.DeviceID,
				LocationID:  e.LocationID,
				Reason:      e.Reason,
				RequestID:   e.RequestID,
			})
		}

		return c.JSON(resp)
	}
}
