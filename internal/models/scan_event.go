package models

import "time"

// ScanEvent: append-only audit entry for every scan attempt.
type ScanEvent struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	WipItemID   *uint    `gorm:"index" json:"wip_item_id"`
	RouteStepID *uint    `gorm:"index" json:"route_step_id"`
	ScanType    ScanType `gorm:"size:10;index;not null" json:"scan_type"`

	// Who and where; nil when the request failed before resolving them.
	UserID     *uint `gorm:"index" json:"user_id"`
	DeviceID   *uint `gorm:"index" json:"device_id"`
	LocationID *uint `json:"location_id"`

	// Only set on ERROR events.
	Reason string `gorm:"size:255" json:"reason"`

	// Events written by the same request share it.
	RequestID string    `gorm:"size:36;index" json:"request_id"`
	Ts        time.Time `gorm:"index;not null" json:"ts"`
}
