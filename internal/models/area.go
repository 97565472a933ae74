package models

import "time"

// Area > Family > Subfamily > Product
type Area struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Family struct {
	ID        uint `gorm:"primaryKey"`
	AreaID    uint `gorm:"index;not null"`
	Area      *Area
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subfamily struct {
	ID            uint `gorm:"primaryKey"`
	FamilyID      uint `gorm:"index;not null"`
	Family        *Family
	Name          string `gorm:"size:100;uniqueIndex;not null"`
	ActiveRouteID *uint  `gorm:"index"` // nil: no route assigned yet
	ActiveRoute   *Route `gorm:"foreignKey:ActiveRouteID"`
	Active        bool   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
