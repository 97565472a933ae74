package models

import "time"

type ScrapLog struct {
	ID          uint `gorm:"primaryKey"`
	WipItemID   uint `gorm:"index;not null"`
	ErrorCodeID uint `gorm:"index;not null"`
	ErrorCode   *ErrorCode
	RouteStepID uint   `gorm:"index;not null"`
	UserID      uint   `gorm:"index;not null"`
	DeviceID    uint   `gorm:"index;not null"`
	LocationID  uint   `gorm:"not null"`
	Qty         int    `gorm:"not null"`
	Comments    string `gorm:"size:500"`
	CreatedAt   time.Time
}
