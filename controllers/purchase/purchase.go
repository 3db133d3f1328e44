package purchase

import (
	"strconv"

	"event-ticketing/errs"
	"event-ticketing/logger"
	"event-ticketing/services/lifecycle"
	purchaseService "event-ticketing/services/purchase"
	"event-ticketing/types"
	checkoutTypes "event-ticketing/types/checkout"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PurchaseController handles checkout and purchase-level HTTP requests.
type PurchaseController struct {
	DB         *gorm.DB
	Logger     *logger.AsyncLogger
	Engine     *lifecycle.Engine
	Aggregator *purchaseService.Aggregator
}

func NewPurchaseController(db *gorm.DB, asyncLogger *logger.AsyncLogger, engine *lifecycle.Engine, agg *purchaseService.Aggregator) *PurchaseController {
	return &PurchaseController{
		DB:         db,
		Logger:     asyncLogger,
		Engine:     engine,
		Aggregator: agg,
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errs.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("purchase operation failed", err)
	}
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

func purchaseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, errs.Validationf("invalid purchase id %q", c.Params("id"))
	}
	return uint(id), nil
}

// Checkout creates one purchase with all its tickets.
func (pc *PurchaseController) Checkout(c *fiber.Ctx) error {
	var req checkoutTypes.Request
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	resp, err := pc.Engine.Checkout(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Checkout complete",
		Status:  fiber.StatusCreated,
		Data:    resp,
	})
}

// Show returns the purchase detail with tickets and total.
func (pc *PurchaseController) Show(c *fiber.Ctx) error {
	id, err := purchaseID(c)
	if err != nil {
		return fail(c, err)
	}

	read, err := pc.Aggregator.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Purchase found",
		Status:  fiber.StatusOK,
		Data:    read,
	})
}

// ShowByGUID resolves the payment deep link identifier.
func (pc *PurchaseController) ShowByGUID(c *fiber.Ctx) error {
	read, err := pc.Aggregator.GetByGUID(c.Params("guid"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Purchase found",
		Status:  fiber.StatusOK,
		Data:    read,
	})
}

// ResendPayment sends the buyer the aggregated payment reminder.
func (pc *PurchaseController) ResendPayment(c *fiber.Ctx) error {
	id, err := purchaseID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := pc.Aggregator.ResendPayment(id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Payment reminder sent",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"resent": true},
	})
}

// Pay settles every ticket of the purchase.
func (pc *PurchaseController) Pay(c *fiber.Ctx) error {
	id, err := purchaseID(c)
	if err != nil {
		return fail(c, err)
	}

	resp, err := pc.Aggregator.Pay(id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Purchase paid",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}
