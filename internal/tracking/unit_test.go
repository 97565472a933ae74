package tracking

import (
	"context"
	"testing"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUnit(t *testing.T) {
	p := newPlant(t, Options{})
	first := p.mustScan("WO1", "P1", 10, "D-L1")
	ctx := context.Background()

	state, err := p.engine.ValidateUnit(ctx, " WO1 ")
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, state.OrderID)
	assert.Equal(t, first.UnitID, state.UnitID)
	assert.Equal(t, models.WipActive, state.UnitStatus)
	assert.Equal(t, models.WorkOrderOpen, state.OrderStatus)
	assert.Equal(t, 1, state.CurrentStep.StepNumber)
	assert.Equal(t, "L1", state.CurrentStep.LocationName)
	assert.True(t, state.CanHold)
	assert.False(t, state.CanRelease)

	_, err = p.rework("WO1", 1, false)
	require.NoError(t, err)
	events := p.count(&models.ScanEvent{}, "")

	state, err = p.engine.ValidateUnit(ctx, "WO1")
	require.NoError(t, err)
	assert.Equal(t, models.WipHold, state.UnitStatus)
	assert.False(t, state.CanHold)
	assert.True(t, state.CanRelease)

	// Lookups leave no trace.
	assert.EqualValues(t, 1, p.count(&models.ReworkLog{}, ""))
	assert.Equal(t, events, p.count(&models.ScanEvent{}, ""))
}

func TestValidateUnitFailures(t *testing.T) {
	p := newPlant(t, Options{})
	ctx := context.Background()

	_, err := p.engine.ValidateUnit(ctx, "  ")
	assertKind(t, err, apperror.Validation)

	_, err = p.engine.ValidateUnit(ctx, "WO-MISSING")
	assertKind(t, err, apperror.OrderNotFound)

	var product models.Product
	require.NoError(t, p.db.Where("part_number = ?", "P1").First(&product).Error)
	require.NoError(t, p.db.Create(&models.WorkOrder{
		WoNumber:  "WO-BARE",
		ProductID: product.ID,
		Status:    models.WorkOrderOpen,
	}).Error)
	_, err = p.engine.ValidateUnit(ctx, "WO-BARE")
	assertKind(t, err, apperror.UnitNotFound)

	p.mustScan("WO2", "P1", 10, "D-L1")
	_, err = p.scrap("WO2", "P1", 10, "V01")
	require.NoError(t, err)
	state, err := p.engine.ValidateUnit(ctx, "WO2")
	require.NoError(t, err)
	assert.Equal(t, models.WipScrapped, state.UnitStatus)
	assert.False(t, state.CanHold)
	assert.False(t, state.CanRelease)
}
