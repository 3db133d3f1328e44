package routes

import (
	"event-ticketing/constants"
	adminController "event-ticketing/controllers/admin"
	checkinController "event-ticketing/controllers/checkin"
	contactController "event-ticketing/controllers/contact"
	eventController "event-ticketing/controllers/event"
	purchaseController "event-ticketing/controllers/purchase"
	ticketController "event-ticketing/controllers/ticket"
	"event-ticketing/logger"
	"event-ticketing/middleware"
	"event-ticketing/services/lifecycle"
	"event-ticketing/services/mailer"
	purchaseService "event-ticketing/services/purchase"
	"event-ticketing/services/reports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, notifier mailer.Notifier) {
	asyncLogger := logger.NewAsyncLogger(db)
	engine := lifecycle.NewEngine(db, notifier)
	aggregator := purchaseService.NewAggregator(db, notifier)
	reportService := reports.NewService(db)

	events := eventController.NewEventController(db, asyncLogger)
	tickets := ticketController.NewTicketController(db, asyncLogger, engine)
	gate := checkinController.NewCheckinController(db, asyncLogger, engine)
	purchases := purchaseController.NewPurchaseController(db, asyncLogger, engine, aggregator)
	contacts := contactController.NewContactController(db, asyncLogger)
	admin := adminController.NewAdminController(db, asyncLogger, reportService)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Use(middleware.RequestLogger(asyncLogger))

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "event-ticketing", "status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")

	// Self-service ticket access via the unguessable token or short code.
	api.Get("/tickets/lookup", tickets.Lookup)
	api.Post("/tickets/pay", tickets.Pay)
	api.Post("/purchases/:id/pay", purchases.Pay)
	api.Get("/purchases/by-guid/:guid", purchases.ShowByGUID)

	/*=============================================================================
	| Event Routes
	===============================================================================*/
	eventGroup := api.Group("/events")

	eventGroup.Get("", events.Index)
	eventGroup.Get("/:id", events.Show)

	eventGroup.Post("", middleware.RequirePermissions(
		constants.PermAdminFull,
	), events.Store)

	eventGroup.Patch("/:id", middleware.RequirePermissions(
		constants.PermAdminFull,
	), events.Update)

	eventGroup.Post("/:id/seed", middleware.RequirePermissions(
		constants.PermAdminFull,
	), events.Seed)

	eventGroup.Get("/:id/tickets", middleware.RequirePermissions(
		constants.StaffPermissions...,
	), events.Tickets)

	eventGroup.Get("/:id/attendees", middleware.RequirePermissions(
		constants.StaffPermissions...,
	), events.Attendees)

	eventGroup.Get("/:id/ticket_types", events.TicketTypes)

	eventGroup.Post("/:id/ticket_types", middleware.RequirePermissions(
		constants.PermAdminFull,
	), events.StoreTicketType)

	eventGroup.Patch("/:id/ticket_types/:typeId", middleware.RequirePermissions(
		constants.PermAdminFull,
	), events.UpdateTicketType)

	/*=============================================================================
	| Ticket Lifecycle Routes
	===============================================================================*/
	ticketGroup := api.Group("/tickets").Use(middleware.RequirePermissions(
		constants.StaffPermissions...,
	))

	ticketGroup.Post("/assign", tickets.Assign)
	ticketGroup.Post("/preview", tickets.Preview)
	ticketGroup.Post("/reassign", tickets.Reassign)
	ticketGroup.Post("/unassign", tickets.Unassign)
	ticketGroup.Post("/refund", tickets.Refund)
	ticketGroup.Post("/refund/finalize", tickets.FinalizeRefund)
	ticketGroup.Post("/void", tickets.Void)
	ticketGroup.Post("/void/finalize", tickets.FinalizeVoid)
	ticketGroup.Post("/resend_code", tickets.ResendCode)
	ticketGroup.Post("/resend_payment", tickets.ResendPayment)
	ticketGroup.Post("/resend_ticket", tickets.ResendTicket)

	/*=============================================================================
	| Check-in Routes
	===============================================================================*/
	api.Post("/checkin", middleware.RequirePermissions(
		constants.PermGateFull,
		constants.PermAdminFull,
	), gate.CheckIn)

	/*=============================================================================
	| Purchase Routes
	===============================================================================*/
	purchaseGroup := api.Group("/purchases").Use(middleware.RequirePermissions(
		constants.StaffPermissions...,
	))

	purchaseGroup.Post("/checkout", purchases.Checkout)
	purchaseGroup.Get("/:id", purchases.Show)
	purchaseGroup.Post("/:id/resend_payment", purchases.ResendPayment)

	/*=============================================================================
	| Contact Routes
	===============================================================================*/
	contactGroup := api.Group("/contacts").Use(middleware.RequirePermissions(
		constants.StaffPermissions...,
	))

	contactGroup.Get("", contacts.Index)
	contactGroup.Get("/:id", contacts.Show)
	contactGroup.Get("/:id/purchases", contacts.Purchases)
	contactGroup.Get("/:id/holder_tickets", contacts.HolderTickets)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	adminGroup := api.Group("/admin").Use(middleware.RequirePermissions(
		constants.PermAdminFull,
	))

	adminGroup.Get("/email_logs", admin.EmailLogs)
	adminGroup.Get("/reports/reconciliation", admin.Reconciliation)
	adminGroup.Get("/reports/reconciliation.csv", admin.ReconciliationCSV)
	adminGroup.Get("/reports/attendees.csv", admin.AttendeesCSV)
}
