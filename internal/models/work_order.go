package models

import "time"

type WorkOrder struct {
	ID        uint   `gorm:"primaryKey"`
	WoNumber  string `gorm:"size:100;uniqueIndex;not null"`
	ProductID uint   `gorm:"index;not null"`
	Product   *Product
	Status    WorkOrderStatus `gorm:"size:20;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	WipItem *WipItem `gorm:"foreignKey:WorkOrderID"`
}
