package checkin

import (
	"event-ticketing/errs"
	"event-ticketing/logger"
	"event-ticketing/services/lifecycle"
	"event-ticketing/types"
	checkinTypes "event-ticketing/types/checkin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckinController handles gate scans.
type CheckinController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Engine *lifecycle.Engine
}

func NewCheckinController(db *gorm.DB, asyncLogger *logger.AsyncLogger, engine *lifecycle.Engine) *CheckinController {
	return &CheckinController{
		DB:     db,
		Logger: asyncLogger,
		Engine: engine,
	}
}

// CheckIn admits a ticket by event id and short code.
func (cc *CheckinController) CheckIn(c *fiber.Ctx) error {
	var req checkinTypes.Request
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    nil,
		})
	}

	resp, err := cc.Engine.CheckIn(req)
	if err != nil {
		status := errs.StatusCode(err)
		return c.Status(status).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  status,
			Data:    nil,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Checked in",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}
