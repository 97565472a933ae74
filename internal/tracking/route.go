package tracking

import (
	"errors"
	"fmt"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"
)

// routeSteps is a route's step list ordered by step number.
type routeSteps []models.RouteStep

// loadRoute returns the steps of a usable route: at least one step, numbered
// 1..n without gaps.
func loadRoute(tx *store.Tx, routeID uint) (routeSteps, error) {
	steps, err := tx.RouteSteps(routeID)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, apperror.New(apperror.RouteNotConfigured, "the route has no steps configured")
	}
	for i, s := range steps {
		if s.StepNumber != i+1 {
			return nil, apperror.Newf(apperror.RouteNotConfigured, "route step numbers are not contiguous (expected %d, found %d)", i+1, s.StepNumber)
		}
	}
	return steps, nil
}

func (r routeSteps) first() models.RouteStep {
	return r[0]
}

func (r routeSteps) byID(id uint) (models.RouteStep, bool) {
	for _, s := range r {
		if s.ID == id {
			return s, true
		}
	}
	return models.RouteStep{}, false
}

func (r routeSteps) byNumber(n int) (models.RouteStep, bool) {
	for _, s := range r {
		if s.StepNumber == n {
			return s, true
		}
	}
	return models.RouteStep{}, false
}

func (r routeSteps) maxNumber() int {
	highest := 0
	for _, s := range r {
		if s.StepNumber > highest {
			highest = s.StepNumber
		}
	}
	return highest
}

// after returns the steps numbered above n.
func (r routeSteps) after(n int) []StepView {
	views := make([]StepView, 0, len(r))
	for _, s := range r {
		if s.StepNumber > n {
			views = append(views, stepView(s))
		}
	}
	return views
}

func stepView(s models.RouteStep) StepView {
	locationName := fmt.Sprintf("Location %d", s.LocationID)
	if s.Location != nil {
		locationName = s.Location.Name
	}
	return StepView{
		StepID:       s.ID,
		StepNumber:   s.StepNumber,
		StepName:     s.Name(),
		LocationID:   s.LocationID,
		LocationName: locationName,
	}
}

// resolveProductRoute walks product > subfamily > active route and
// short-circuits at the first missing hop.
func resolveProductRoute(tx *store.Tx, partNumber string) (*models.Product, uint, error) {
	product, err := tx.ActiveProduct(partNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, apperror.Newf(apperror.PartNotRegistered, "part %s is not registered, contact engineering", partNumber)
	}
	if err != nil {
		return nil, 0, err
	}
	if product.Subfamily == nil {
		return nil, 0, apperror.Newf(apperror.PartNotRegistered, "part %s has no subfamily assigned", partNumber)
	}
	if product.Subfamily.ActiveRouteID == nil {
		return nil, 0, apperror.Newf(apperror.PartNotRegistered, "subfamily %s has no active route", product.Subfamily.Name)
	}
	return product, *product.Subfamily.ActiveRouteID, nil
}
