package admin

import (
	"event-ticketing/errs"
	"event-ticketing/logger"
	emaillogModel "event-ticketing/models/emaillog"
	"event-ticketing/services/reports"
	"event-ticketing/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminController exposes operational views: outbound mail history and
// per-event reconciliation reports.
type AdminController struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Reports *reports.Service
}

func NewAdminController(db *gorm.DB, asyncLogger *logger.AsyncLogger, reportService *reports.Service) *AdminController {
	return &AdminController{
		DB:      db,
		Logger:  asyncLogger,
		Reports: reportService,
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errs.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("admin operation failed", err)
	}
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

func eventIDQuery(c *fiber.Ctx) (uint, error) {
	eventID := c.QueryInt("event_id", 0)
	if eventID <= 0 {
		return 0, errs.Validationf("event_id query parameter is required")
	}
	return uint(eventID), nil
}

// EmailLogs lists the outbound mail history newest first. The HTML body is
// omitted to keep the payload small; the text body is enough for preview.
func (ac *AdminController) EmailLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var logs []emaillogModel.EmailLog
	err := ac.DB.Omit("html_body").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Email logs retrieved",
		Status:  fiber.StatusOK,
		Data:    logs,
	})
}

// Reconciliation returns the event summary as JSON.
func (ac *AdminController) Reconciliation(c *fiber.Ctx) error {
	eventID, err := eventIDQuery(c)
	if err != nil {
		return fail(c, err)
	}
	summary, err := ac.Reports.EventSummary(eventID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Reconciliation summary retrieved",
		Status:  fiber.StatusOK,
		Data:    summary,
	})
}

// ReconciliationCSV downloads the summary as a metric/value CSV.
func (ac *AdminController) ReconciliationCSV(c *fiber.Ctx) error {
	eventID, err := eventIDQuery(c)
	if err != nil {
		return fail(c, err)
	}
	body, err := ac.Reports.SummaryCSV(eventID)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reconciliation.csv"`)
	return c.Status(fiber.StatusOK).Send(body)
}

// AttendeesCSV downloads the attendee roster for an event.
func (ac *AdminController) AttendeesCSV(c *fiber.Ctx) error {
	eventID, err := eventIDQuery(c)
	if err != nil {
		return fail(c, err)
	}
	body, err := ac.Reports.AttendeesCSV(eventID)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="attendees.csv"`)
	return c.Status(fiber.StatusOK).Send(body)
}
