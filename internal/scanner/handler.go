package scanner

import (
	"strconv"

	"trackii-backend/internal/auth"
	"trackii-backend/internal/tracking"

	"github.com/gofiber/fiber/v2"
)

type ScanRequest struct {
	WoNumber   string `json:"wo_number"`
	PartNumber string `json:"part_number"`
	Quantity   int    `json:"quantity"`
}

type ScrapRequest struct {
	WoNumber    string `json:"wo_number"`
	PartNumber  string `json:"part_number"`
	Quantity    int    `json:"quantity"`
	ErrorCodeID uint   `json:"error_code_id"`
	Comments    string `json:"comments"`
}

type ReworkRequest struct {
	WoNumber     string `json:"wo_number"`
	PartNumber   string `json:"part_number"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
	IsCompletion bool   `json:"is_completion"`
}

// POST /api/scanner/register
func RegisterScanHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ScanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, deviceID := auth.Identity(c)
		res, err := engine.RegisterScan(c.UserContext(), tracking.ScanRequest{
			OrderNumber: body.WoNumber,
			PartNumber:  body.PartNumber,
			Quantity:    body.Quantity,
			UserID:      userID,
			DeviceID:    deviceID,
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"order_id":      res.OrderID,
			"wip_item_id":   res.UnitID,
			"route_step_id": res.StepID,
			"step_number":   res.StepNumber,
			"is_final_step": res.IsFinalStep,
			"message":       res.Message,
		})
	}
}

// POST /api/scanner/scrap
func ScrapHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ScrapRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, deviceID := auth.Identity(c)
		res, err := engine.Scrap(c.UserContext(), tracking.ScrapRequest{
			OrderNumber: body.WoNumber,
			PartNumber:  body.PartNumber,
			Quantity:    body.Quantity,
			ErrorCodeID: body.ErrorCodeID,
			Comments:    body.Comments,
			UserID:      userID,
			DeviceID:    deviceID,
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"order_id":    res.OrderID,
			"wip_item_id": res.UnitID,
			"message":     res.Message,
		})
	}
}

// POST /api/scanner/rework
func ReworkHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReworkRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, deviceID := auth.Identity(c)
		res, err := engine.Rework(c.UserContext(), tracking.ReworkRequest{
			OrderNumber:  body.WoNumber,
			PartNumber:   body.PartNumber,
			Quantity:     body.Quantity,
			Reason:       body.Reason,
			IsCompletion: body.IsCompletion,
			UserID:       userID,
			DeviceID:     deviceID,
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"order_id":    res.OrderID,
			"wip_item_id": res.UnitID,
			"status":      res.NewStatus,
			"message":     res.Message,
		})
	}
}

// GET /api/scanner/work-orders/:woNumber/context?partNumber=P1
func WorkOrderContextHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		oc, err := engine.WorkOrderContext(c.UserContext(), c.Params("woNumber"), c.Query("partNumber"))
		if err != nil {
			return err
		}
		return c.JSON(oc)
	}
}

// GET /api/scanner/work-orders/:woNumber/unit
func UnitHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := engine.ValidateUnit(c.UserContext(), c.Params("woNumber"))
		if err != nil {
			return err
		}
		return c.JSON(state)
	}
}

// GET /api/scanner/part/:partNumber
func PartLookupHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := engine.LookupPart(c.UserContext(), c.Params("partNumber"))
		if err != nil {
			return err
		}
		return c.JSON(info)
	}
}

// GET /api/scanner/error-categories
func ErrorCategoriesHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := engine.ListErrorCategories(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(cats)
	}
}

// GET /api/scanner/error-categories/:categoryId/codes
func ErrorCodesHandler(engine *tracking.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("categoryId"), 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}

		codes, err := engine.ListErrorCodes(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(codes)
	}
}
