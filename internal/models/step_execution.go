package models

import "time"

// StepExecution: one committed transition of a unit through a route step.
// Never updated; at most one row per (wip item, route step).
type StepExecution struct {
	ID          uint `gorm:"primaryKey"`
	WipItemID   uint `gorm:"uniqueIndex:idx_execution_wip_step;not null"`
	RouteStepID uint `gorm:"uniqueIndex:idx_execution_wip_step;not null"`
	RouteStep   *RouteStep
	UserID      uint      `gorm:"index;not null"`
	DeviceID    uint      `gorm:"index;not null"`
	LocationID  uint      `gorm:"index;not null"`
	QtyIn       int       `gorm:"not null"`
	QtyScrap    int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
}
