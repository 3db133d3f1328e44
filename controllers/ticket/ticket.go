package ticket

import (
	"event-ticketing/errs"
	"event-ticketing/logger"
	"event-ticketing/services/lifecycle"
	"event-ticketing/types"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TicketController handles single-ticket HTTP requests.
type TicketController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Engine *lifecycle.Engine
}

func NewTicketController(db *gorm.DB, asyncLogger *logger.AsyncLogger, engine *lifecycle.Engine) *TicketController {
	return &TicketController{
		DB:     db,
		Logger: asyncLogger,
		Engine: engine,
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errs.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("ticket operation failed", err)
	}
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	logger.Error("Failed to parse request body", err)
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Message: "Invalid request body",
		Status:  fiber.StatusBadRequest,
		Data:    nil,
	})
}

// Assign claims a ticket for a holder.
func (tc *TicketController) Assign(c *fiber.Ctx) error {
	var req ticketTypes.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.Assign(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket assigned",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// Preview returns the code the allocator would issue next.
func (tc *TicketController) Preview(c *fiber.Ctx) error {
	var req ticketTypes.AssignPreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.Preview(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Preview generated",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// Lookup resolves a ticket by token, or by code with an optional event id.
func (tc *TicketController) Lookup(c *fiber.Ctx) error {
	var token, code *string
	var eventID *uint

	if v := c.Query("token"); v != "" {
		token = &v
	}
	if v := c.Query("code"); v != "" {
		code = &v
	}
	if v := c.QueryInt("event_id"); v > 0 {
		id := uint(v)
		eventID = &id
	}

	resp, err := tc.Engine.Lookup(token, code, eventID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket found",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// Pay settles a single ticket by token or event+code.
func (tc *TicketController) Pay(c *fiber.Ctx) error {
	var req ticketTypes.PayRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.Pay(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket paid",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// ResendCode re-sends the state-appropriate email for a ticket.
func (tc *TicketController) ResendCode(c *fiber.Ctx) error {
	var req ticketTypes.ResendRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.ResendCode(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Email resent",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// ResendPayment re-sends the payment request email.
func (tc *TicketController) ResendPayment(c *fiber.Ctx) error {
	var req ticketTypes.ResendRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.ResendPayment(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Payment email resent",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// ResendTicket re-sends the ticket email for a paid ticket.
func (tc *TicketController) ResendTicket(c *fiber.Ctx) error {
	var req ticketTypes.ResendRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	resp, err := tc.Engine.ResendTicket(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket email resent",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// Unassign releases an unpaid or waived ticket back to the pool.
func (tc *TicketController) Unassign(c *fiber.Ctx) error {
	var req ticketTypes.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.Unassign(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket unassigned",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// Refund starts the refund of a paid ticket.
func (tc *TicketController) Refund(c *fiber.Ctx) error {
	var req ticketTypes.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.Refund(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Refund initiated",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// FinalizeRefund settles a refunding ticket to refunded.
func (tc *TicketController) FinalizeRefund(c *fiber.Ctx) error {
	var req ticketTypes.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.FinalizeRefund(req.TicketID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Refund finalized",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// Void cancels a settled ticket.
func (tc *TicketController) Void(c *fiber.Ctx) error {
	var req ticketTypes.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.Void(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket voided",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// FinalizeVoid settles a voiding ticket to voided.
func (tc *TicketController) FinalizeVoid(c *fiber.Ctx) error {
	var req ticketTypes.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.FinalizeVoid(req.TicketID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Void finalized",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// Reassign rebinds a ticket to a new holder.
func (tc *TicketController) Reassign(c *fiber.Ctx) error {
	var req ticketTypes.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	t, err := tc.Engine.Reassign(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket reassigned",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}
