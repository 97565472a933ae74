package audit

import (
	"fmt"
	"time"

	"trackii-backend/internal/models"

	"gorm.io/gorm"
)

// ScanOptions describes one scan event. Nil ids mean "not resolved yet".
type ScanOptions struct {
	WipItemID   *uint
	RouteStepID *uint
	Type        models.ScanType
	UserID      *uint
	DeviceID    *uint
	LocationID  *uint
	Reason      string
	RequestID   string
	At          time.Time
}

// WriteScan appends a scan event. Scan events are never updated or deleted.
func WriteScan(db *gorm.DB, opts ScanOptions) error {
	if opts.Type == "" {
		return fmt.Errorf("scan event type is required")
	}
	at := opts.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	event := models.ScanEvent{
		WipItemID:   opts.WipItemID,
		RouteStepID: opts.RouteStepID,
		ScanType:    opts.Type,
		UserID:      opts.UserID,
		DeviceID:    opts.DeviceID,
		LocationID:  opts.LocationID,
		Reason:      truncate(opts.Reason, 255),
		RequestID:   opts.RequestID,
		Ts:          at,
	}
	if err := db.Create(&event).Error; err != nil {
		return fmt.Errorf("write scan event: %w", err)
	}
	return nil
}

// WriteUnregisteredPart records a part number nobody has registered yet.
func WriteUnregisteredPart(db *gorm.DB, partNumber string, at time.Time) error {
	part := models.UnregisteredPart{
		PartNumber: partNumber,
		Active:     true,
		CreatedAt:  at,
	}
	if err := db.Create(&part).Error; err != nil {
		return fmt.Errorf("write unregistered part: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
