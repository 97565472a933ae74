package models

import (
	"fmt"
	"time"
)

type Route struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	Version   string `gorm:"size:20"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Steps []RouteStep `gorm:"foreignKey:RouteID"`
}

// RouteStep: step numbers start at 1 and are contiguous within a route.
type RouteStep struct {
	ID         uint `gorm:"primaryKey"`
	RouteID    uint `gorm:"uniqueIndex:idx_route_step_number;not null"`
	StepNumber int  `gorm:"uniqueIndex:idx_route_step_number;not null"`
	LocationID uint `gorm:"index;not null"`
	Location   *Location
}

// Name is what the scanner shows for the step.
func (s RouteStep) Name() string {
	if s.Location != nil && s.Location.Name != "" {
		return s.Location.Name
	}
	return fmt.Sprintf("Step %d", s.StepNumber)
}
