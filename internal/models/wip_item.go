package models

import "time"

// WipItem: the physical unit of a work order moving through its route.
// Created on the first successful scan, never before.
type WipItem struct {
	ID            uint `gorm:"primaryKey"`
	WorkOrderID   uint `gorm:"uniqueIndex;not null"`
	WorkOrder     *WorkOrder
	RouteID       uint       `gorm:"index;not null"`
	CurrentStepID uint       `gorm:"index;not null"`
	CurrentStep   *RouteStep `gorm:"foreignKey:CurrentStepID"`
	Status        WipStatus  `gorm:"size:20;index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	StepExecutions []StepExecution `gorm:"foreignKey:WipItemID"`
}
