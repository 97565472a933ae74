package models

import "time"

type ReworkLog struct {
	ID         uint   `gorm:"primaryKey"`
	WipItemID  uint   `gorm:"index;not null"`
	LocationID uint   `gorm:"not null"`
	UserID     uint   `gorm:"index;not null"`
	DeviceID   uint   `gorm:"index;not null"`
	Qty        int    `gorm:"not null"`
	Reason     string `gorm:"size:500"`
	Completed  bool   `gorm:"not null"` // true: unit released back to ACTIVE
	CreatedAt  time.Time
}
