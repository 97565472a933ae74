package store

import (
	"time"

	"trackii-backend/internal/audit"
	"trackii-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Tx struct {
	db       *gorm.DB
	lockRows bool
}

// --- reference reads ---

func (t *Tx) ActiveUser(id uint) (*models.User, error) {
	var u models.User
	if err := t.db.Where("id = ? AND active = ?", id, true).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (t *Tx) ActiveDevice(id uint) (*models.Device, error) {
	var d models.Device
	if err := t.db.Preload("Location").
		Where("id = ? AND active = ?", id, true).
		First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// ActiveProduct loads the product with its subfamily > family > area chain
// and the subfamily's active route. Part numbers match case-insensitively.
func (t *Tx) ActiveProduct(partNumber string) (*models.Product, error) {
	var p models.Product
	if err := t.db.
		Preload("Subfamily.Family.Area").
		Preload("Subfamily.ActiveRoute").
		Where("LOWER(part_number) = LOWER(?) AND active = ?", partNumber, true).
		First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// RouteSteps returns the route's steps ordered by step number.
func (t *Tx) RouteSteps(routeID uint) ([]models.RouteStep, error) {
	var steps []models.RouteStep
	if err := t.db.Preload("Location").
		Where("route_id = ?", routeID).
		Order("step_number ASC").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (t *Tx) ActiveErrorCode(id uint) (*models.ErrorCode, error) {
	var ec models.ErrorCode
	if err := t.db.Where("id = ? AND active = ?", id, true).First(&ec).Error; err != nil {
		return nil, notFound(err)
	}
	return &ec, nil
}

func (t *Tx) ActiveErrorCategories() ([]models.ErrorCategory, error) {
	var cats []models.ErrorCategory
	err := t.db.Where("active = ?", true).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (t *Tx) ActiveErrorCodes(categoryID uint) ([]models.ErrorCode, error) {
	var codes []models.ErrorCode
	err := t.db.Where("category_id = ? AND active = ?", categoryID, true).
		Order("code ASC").
		Find(&codes).Error
	return codes, err
}

// --- entity reads ---

// WorkOrderByNumber loads the order with its product and route context.
// forUpdate takes a row lock where the database supports it.
func (t *Tx) WorkOrderByNumber(woNumber string, forUpdate bool) (*models.WorkOrder, error) {
	q := t.db.Preload("Product.Subfamily.ActiveRoute")
	if forUpdate && t.lockRows {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var wo models.WorkOrder
	if err := q.Where("wo_number = ?", woNumber).First(&wo).Error; err != nil {
		return nil, notFound(err)
	}
	return &wo, nil
}

// WipItemByWorkOrder loads the unit with its step executions, oldest first.
func (t *Tx) WipItemByWorkOrder(workOrderID uint) (*models.WipItem, error) {
	var wip models.WipItem
	if err := t.db.
		Preload("StepExecutions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CurrentStep.Location").
		Where("work_order_id = ?", workOrderID).
		First(&wip).Error; err != nil {
		return nil, notFound(err)
	}
	return &wip, nil
}

func (t *Tx) LatestExecution(wipItemID uint) (*models.StepExecution, error) {
	var exec models.StepExecution
	if err := t.db.Where("wip_item_id = ?", wipItemID).
		Order("id DESC").
		First(&exec).Error; err != nil {
		return nil, notFound(err)
	}
	return &exec, nil
}

func (t *Tx) Execution(wipItemID, routeStepID uint) (*models.StepExecution, error) {
	var exec models.StepExecution
	if err := t.db.Where("wip_item_id = ? AND route_step_id = ?", wipItemID, routeStepID).
		First(&exec).Error; err != nil {
		return nil, notFound(err)
	}
	return &exec, nil
}

// --- entity writes ---

func (t *Tx) CreateWorkOrder(wo *models.WorkOrder) error {
	return t.db.Omit(clause.Associations).Create(wo).Error
}

func (t *Tx) CreateWipItem(wip *models.WipItem) error {
	return t.db.Omit(clause.Associations).Create(wip).Error
}

func (t *Tx) CreateStepExecution(exec *models.StepExecution) error {
	return t.db.Omit(clause.Associations).Create(exec).Error
}

func (t *Tx) SetWorkOrderStatus(wo *models.WorkOrder, status models.WorkOrderStatus) error {
	if err := t.db.Model(&models.WorkOrder{}).
		Where("id = ?", wo.ID).
		Update("status", status).Error; err != nil {
		return err
	}
	wo.Status = status
	return nil
}

func (t *Tx) SetWipStatus(wip *models.WipItem, status models.WipStatus) error {
	if err := t.db.Model(&models.WipItem{}).
		Where("id = ?", wip.ID).
		Update("status", status).Error; err != nil {
		return err
	}
	wip.Status = status
	return nil
}

func (t *Tx) AdvanceWip(wip *models.WipItem, stepID uint) error {
	if err := t.db.Model(&models.WipItem{}).
		Where("id = ?", wip.ID).
		Update("current_step_id", stepID).Error; err != nil {
		return err
	}
	wip.CurrentStepID = stepID
	return nil
}

// --- append-only audit records ---

func (t *Tx) AppendScanEvent(opts audit.ScanOptions) error {
	return audit.WriteScan(t.db, opts)
}

func (t *Tx) AppendUnregisteredPart(partNumber string, at time.Time) error {
	return audit.WriteUnregisteredPart(t.db, partNumber, at)
}

func (t *Tx) AppendScrapLog(log *models.ScrapLog) error {
	return t.db.Omit(clause.Associations).Create(log).Error
}

func (t *Tx) AppendReworkLog(log *models.ReworkLog) error {
	return t.db.Omit(clause.Associations).Create(log).Error
}

// Route is a reference read used when a unit follows a route other than its
// subfamily's current one.
func (t *Tx) Route(id uint) (*models.Route, error) {
	var r models.Route
	if err := t.db.First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}
