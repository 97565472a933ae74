package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/store"

	"go.uber.org/zap"
)

// PartInfo describes where a part number sits in the product hierarchy.
// Fields past the first unresolved level are left empty.
type PartInfo struct {
	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`

	PartNumber    string `json:"part_number"`
	ProductID     uint   `json:"product_id,omitempty"`
	SubfamilyID   uint   `json:"subfamily_id,omitempty"`
	SubfamilyName string `json:"subfamily_name,omitempty"`
	FamilyID      uint   `json:"family_id,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	AreaID        uint   `json:"area_id,omitempty"`
	AreaName      string `json:"area_name,omitempty"`
	RouteID       uint   `json:"route_id,omitempty"`
	RouteName     string `json:"route_name,omitempty"`

	FirstLocation  string `json:"first_location,omitempty"`
	SecondLocation string `json:"second_location,omitempty"`
}

// LookupPart resolves a part number hop by hop. Part numbers that are
// unknown or missing a subfamily, family or area are recorded for
// engineering.
func (e *Engine) LookupPart(ctx context.Context, partNumber string) (*PartInfo, error) {
	partNumber = strings.TrimSpace(partNumber)
	if partNumber == "" {
		return nil, apperror.New(apperror.Validation, "part number is required")
	}

	info := &PartInfo{PartNumber: partNumber}
	unknown := false
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		product, err := tx.ActiveProduct(partNumber)
		if errors.Is(err, store.ErrNotFound) {
			unknown = true
			info.Message = fmt.Sprintf("part %s is not registered, contact engineering", partNumber)
			return nil
		}
		if err != nil {
			return err
		}
		info.PartNumber = product.PartNumber
		info.ProductID = product.ID

		sub := product.Subfamily
		if sub == nil {
			unknown = true
			info.Message = "the part has no subfamily assigned"
			return nil
		}
		info.SubfamilyID, info.SubfamilyName = sub.ID, sub.Name

		if sub.Family == nil {
			unknown = true
			info.Message = "the subfamily has no family"
			return nil
		}
		info.FamilyID, info.FamilyName = sub.Family.ID, sub.Family.Name

		if sub.Family.Area == nil {
			unknown = true
			info.Message = "the family has no area"
			return nil
		}
		info.AreaID, info.AreaName = sub.Family.Area.ID, sub.Family.Area.Name

		if sub.ActiveRoute == nil {
			info.Message = "the subfamily has no active route"
			return nil
		}
		info.RouteID, info.RouteName = sub.ActiveRoute.ID, sub.ActiveRoute.Name

		steps, err := tx.RouteSteps(sub.ActiveRoute.ID)
		if err != nil {
			return err
		}
		for _, s := range steps {
			switch s.StepNumber {
			case 1:
				info.FirstLocation = stepView(s).LocationName
			case 2:
				info.SecondLocation = stepView(s).LocationName
			}
		}
		info.Found = true
		return nil
	})
	if err != nil {
		e.logOutcome("Part lookup", err, zap.String("part_number", partNumber))
		return nil, err
	}

	if unknown {
		e.flush(ctx, &sideEffects{unregisteredParts: []string{partNumber}, at: e.opts.Now()})
	}
	return info, nil
}
