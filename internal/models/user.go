package models

import "time"

type User struct {
	ID        uint     `gorm:"primaryKey"`
	Username  string   `gorm:"size:100;uniqueIndex;not null"`
	Name      string   `gorm:"size:100"`
	Role      UserRole `gorm:"size:20;not null;default:operator"`
	Active    bool     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Devices []Device
}
