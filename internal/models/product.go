package models

import "time"

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	PartNumber  string `gorm:"size:100;uniqueIndex;not null"`
	SubfamilyID *uint  `gorm:"index"`
	Subfamily   *Subfamily
	Active      bool `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UnregisteredPart: scanned part numbers that had no active product.
// Engineering uses the list to register missing parts.
type UnregisteredPart struct {
	ID         uint      `gorm:"primaryKey"`
	PartNumber string    `gorm:"size:100;index;not null"`
	Active     bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index"`
}
