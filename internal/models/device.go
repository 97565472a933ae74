package models

import "time"

// Device: handheld scanner, bound to one location.
type Device struct {
	ID         uint   `gorm:"primaryKey"`
	DeviceUID  string `gorm:"size:100;uniqueIndex;not null"`
	Name       string `gorm:"size:100"`
	LocationID uint   `gorm:"index;not null"`
	Location   *Location
	UserID     *uint `gorm:"index"`
	User       *User
	Active     bool `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
