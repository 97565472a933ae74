package models

type ErrorCategory struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:100;uniqueIndex;not null"`
	Active bool   `gorm:"not null"`

	ErrorCodes []ErrorCode `gorm:"foreignKey:CategoryID"`
}

type ErrorCode struct {
	ID          uint   `gorm:"primaryKey"`
	CategoryID  uint   `gorm:"index;not null"`
	Code        string `gorm:"size:50;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	Active      bool   `gorm:"not null"`
}
