package tracking

import (
	"context"
	"testing"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextForNewOrder(t *testing.T) {
	p := newPlant(t, Options{})

	oc, err := p.engine.WorkOrderContext(context.Background(), "WO-NEW", "P3")
	require.NoError(t, err)
	assert.True(t, oc.IsNew)
	assert.Nil(t, oc.OrderID)
	assert.Nil(t, oc.UnitID)
	assert.Nil(t, oc.PreviousQuantity)
	assert.Equal(t, "R-LONG", oc.RouteName)
	require.NotNil(t, oc.CurrentStep)
	assert.Equal(t, 1, oc.CurrentStep.StepNumber)
	assert.Equal(t, "CUT", oc.CurrentStep.LocationName)
	require.Len(t, oc.NextSteps, 2)
	assert.Equal(t, "WELD", oc.NextSteps[0].StepName)
	assert.Equal(t, "PACK", oc.NextSteps[1].StepName)

	assert.EqualValues(t, 0, p.count(&models.WorkOrder{}, ""))
}

func TestContextTracksProgress(t *testing.T) {
	p := newPlant(t, Options{})
	p.mustScan("WO3", "P3", 25, "D-CUT")
	p.mustScan("WO3", "P3", 20, "D-WELD")

	oc, err := p.engine.WorkOrderContext(context.Background(), "WO3", "")
	require.NoError(t, err)
	assert.False(t, oc.IsNew)
	require.NotNil(t, oc.OrderID)
	assert.Equal(t, models.WorkOrderInProgress, oc.OrderStatus)
	assert.Equal(t, models.WipActive, oc.UnitStatus)
	require.NotNil(t, oc.PreviousQuantity)
	assert.Equal(t, 20, *oc.PreviousQuantity)
	assert.Equal(t, 2, oc.CurrentStep.StepNumber)
	assert.Equal(t, "WELD", oc.CurrentStep.LocationName)
	require.Len(t, oc.NextSteps, 1)
	assert.Equal(t, 3, oc.NextSteps[0].StepNumber)

	p.mustScan("WO3", "P3", 20, "D-PACK")
	oc, err = p.engine.WorkOrderContext(context.Background(), "WO3", "P3")
	require.NoError(t, err)
	assert.Equal(t, models.WipFinished, oc.UnitStatus)
	assert.Empty(t, oc.NextSteps)
}

func TestContextFailures(t *testing.T) {
	p := newPlant(t, Options{})

	_, err := p.engine.WorkOrderContext(context.Background(), " ", "P1")
	assertKind(t, err, apperror.Validation)

	_, err = p.engine.WorkOrderContext(context.Background(), "WO-NEW", "")
	assertKind(t, err, apperror.OrderNotFound)

	_, err = p.engine.WorkOrderContext(context.Background(), "WO-NEW", "NOPE")
	assertKind(t, err, apperror.PartNotRegistered)

	_, err = p.engine.WorkOrderContext(context.Background(), "WO-NEW", "P-EMPTY")
	assertKind(t, err, apperror.RouteNotConfigured)

	// Projections never write.
	assert.EqualValues(t, 0, p.count(&models.UnregisteredPart{}, ""))
	assert.EqualValues(t, 0, p.count(&models.ScanEvent{}, ""))
}

func TestLookupPart(t *testing.T) {
	p := newPlant(t, Options{})

	info, err := p.engine.LookupPart(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, info.Found)
	assert.Equal(t, "P1", info.PartNumber)
	assert.Equal(t, "HX-SHORT", info.SubfamilyName)
	assert.Equal(t, "Harness", info.FamilyName)
	assert.Equal(t, "Assembly", info.AreaName)
	assert.Equal(t, "R-SHORT", info.RouteName)
	assert.Equal(t, "L1", info.FirstLocation)
	assert.Equal(t, "L2", info.SecondLocation)

	info, err = p.engine.LookupPart(context.Background(), "P-NOROUTE")
	require.NoError(t, err)
	assert.False(t, info.Found)
	assert.Equal(t, "HX-NOROUTE", info.SubfamilyName)
	assert.Zero(t, info.RouteID)
	assert.EqualValues(t, 0, p.count(&models.UnregisteredPart{}, ""))

	info, err = p.engine.LookupPart(context.Background(), "P-ORPHAN")
	require.NoError(t, err)
	assert.False(t, info.Found)
	assert.NotZero(t, info.ProductID)
	assert.Empty(t, info.SubfamilyName)
	assert.EqualValues(t, 1, p.count(&models.UnregisteredPart{}, "part_number = ?", "P-ORPHAN"))

	info, err = p.engine.LookupPart(context.Background(), "NOPE-1")
	require.NoError(t, err)
	assert.False(t, info.Found)
	assert.NotEmpty(t, info.Message)
	assert.EqualValues(t, 1, p.count(&models.UnregisteredPart{}, "part_number = ?", "NOPE-1"))

	_, err = p.engine.LookupPart(context.Background(), "")
	assertKind(t, err, apperror.Validation)
}

func TestErrorCatalog(t *testing.T) {
	p := newPlant(t, Options{})

	cats, err := p.engine.ListErrorCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Electrical", cats[0].Name)
	assert.Equal(t, "Visual", cats[1].Name)

	codes, err := p.engine.ListErrorCodes(context.Background(), cats[1].ID)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "V01", codes[0].Code)
	assert.Equal(t, "Dent", codes[1].Description)

	codes, err = p.engine.ListErrorCodes(context.Background(), 9999)
	require.NoError(t, err)
	assert.Empty(t, codes)

	_, err = p.engine.ListErrorCodes(context.Background(), 0)
	assertKind(t, err, apperror.Validation)
}
