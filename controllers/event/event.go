package event

import (
	"errors"
	"strconv"
	"time"

	"event-ticketing/errs"
	"event-ticketing/logger"
	eventModel "event-ticketing/models/event"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/types"
	eventTypes "event-ticketing/types/event"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventController handles event and ticket type management.
type EventController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewEventController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *EventController {
	return &EventController{
		DB:     db,
		Logger: asyncLogger,
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errs.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("event operation failed", err)
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

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, errs.Validationf("invalid %s %q", name, c.Params(name))
	}
	return uint(id), nil
}

func (ec *EventController) loadEvent(c *fiber.Ctx) (*eventModel.Event, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var ev eventModel.Event
	if err := ec.DB.First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("event %d not found", id)
		}
		return nil, err
	}
	return &ev, nil
}

// Index lists events newest first.
func (ec *EventController) Index(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var events []eventModel.Event
	err := ec.DB.Order("starts_at desc").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Events fetched",
		Status:  fiber.StatusOK,
		Data:    events,
	})
}

// Show returns one event.
func (ec *EventController) Show(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Event fetched",
		Status:  fiber.StatusOK,
		Data:    ev,
	})
}

// Store creates an event.
func (ec *EventController) Store(c *fiber.Ctx) error {
	var req eventTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Title == "" {
		return fail(c, errs.Validationf("title is required"))
	}
	if req.Capacity < 0 {
		return fail(c, errs.Validationf("capacity cannot be negative"))
	}

	ev := eventModel.Event{
		PublicID:          uuid.NewString(),
		Title:             req.Title,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		Capacity:          req.Capacity,
		LocationName:      req.LocationName,
		AddressMapsLink:   req.AddressMapsLink,
		LocationDirection: req.LocationDirection,
		ContactPhone:      req.ContactPhone,
		ContactEmail:      req.ContactEmail,
		ContactURL:        req.ContactURL,
	}
	if err := ec.DB.Create(&ev).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Event created",
		Status:  fiber.StatusCreated,
		Data:    ev,
	})
}

// Update applies a partial update; absent fields stay untouched.
func (ec *EventController) Update(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var req eventTypes.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if req.Title != nil {
		ev.Title = *req.Title
	}
	if req.StartsAt != nil {
		ev.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		ev.EndsAt = req.EndsAt
	}
	if req.Capacity != nil {
		ev.Capacity = *req.Capacity
	}
	if req.LocationName != nil {
		ev.LocationName = req.LocationName
	}
	if req.AddressMapsLink != nil {
		ev.AddressMapsLink = req.AddressMapsLink
	}
	if req.LocationDirection != nil {
		ev.LocationDirection = req.LocationDirection
	}
	if req.ContactPhone != nil {
		ev.ContactPhone = req.ContactPhone
	}
	if req.ContactEmail != nil {
		ev.ContactEmail = req.ContactEmail
	}
	if req.ContactURL != nil {
		ev.ContactURL = req.ContactURL
	}

	if err := ec.DB.Save(ev).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Event updated",
		Status:  fiber.StatusOK,
		Data:    ev,
	})
}

// Seed pre-creates ticket slots up to the event's capacity. Idempotent:
// existing tickets count toward the cap.
func (ec *EventController) Seed(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var existing int64
	if err := ec.DB.Model(&ticketModel.Ticket{}).Where("event_id = ?", ev.ID).Count(&existing).Error; err != nil {
		return fail(c, err)
	}

	toCreate := ev.Capacity - int(existing)
	if toCreate < 0 {
		toCreate = 0
	}
	if toCreate > 0 {
		slots := make([]ticketModel.Ticket, 0, toCreate)
		for i := 0; i < toCreate; i++ {
			slots = append(slots, ticketModel.Ticket{UUID: uuid.NewString(), EventID: ev.ID})
		}
		if err := ec.DB.CreateInBatches(slots, 200).Error; err != nil {
			return fail(c, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Tickets seeded",
		Status:  fiber.StatusOK,
		Data: eventTypes.SeedResponse{
			EventID:  ev.ID,
			Capacity: ev.Capacity,
			Existing: int(existing),
			Created:  toCreate,
		},
	})
}

// Tickets lists an event's tickets, optionally filtered by status.
func (ec *EventController) Tickets(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	q := ec.DB.Where("event_id = ?", ev.ID)
	if status := c.Query("status"); status != "" {
		if !ticketModel.TicketStatus(status).IsValid() {
			return fail(c, errs.Validationf("unknown status %q", status))
		}
		q = q.Where("status = ?", status)
	}

	var tickets []ticketModel.Ticket
	if err := q.Order("id asc").Find(&tickets).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Tickets fetched",
		Status:  fiber.StatusOK,
		Data:    tickets,
	})
}

// attendeeRow is the joined attendee listing shape.
type attendeeRow struct {
	TicketID      uint       `json:"ticket_id"`
	ShortCode     *string    `json:"short_code,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	ContactID     *uint      `json:"contact_id,omitempty"`
	FirstName     *string    `json:"first_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
}

// Attendees lists tickets joined with their holder contact.
func (ec *EventController) Attendees(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var rows []attendeeRow
	err = ec.DB.Model(&ticketModel.Ticket{}).
		Select(`tickets.id as ticket_id, tickets.short_code, tickets.status, tickets.payment_status,
			tickets.checked_in_at, contacts.id as contact_id, contacts.first_name, contacts.last_name,
			contacts.email, contacts.phone`).
		Joins("JOIN contacts ON contacts.id = tickets.holder_contact_id").
		Where("tickets.event_id = ?", ev.ID).
		Order("tickets.id asc").
		Scan(&rows).Error
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Attendees fetched",
		Status:  fiber.StatusOK,
		Data:    rows,
	})
}

// TicketTypes lists the event's types.
func (ec *EventController) TicketTypes(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var tts []eventModel.TicketType
	if err := ec.DB.Where("event_id = ?", ev.ID).Order("id asc").Find(&tts).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket types fetched",
		Status:  fiber.StatusOK,
		Data:    tts,
	})
}

// StoreTicketType creates a type under the event.
func (ec *EventController) StoreTicketType(c *fiber.Ctx) error {
	ev, err := ec.loadEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var req eventTypes.TicketTypeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Name == "" {
		return fail(c, errs.Validationf("name is required"))
	}
	if req.Price < 0 {
		return fail(c, errs.Validationf("price cannot be negative"))
	}

	tt := eventModel.TicketType{
		EventID:     ev.ID,
		Name:        req.Name,
		Price:       req.Price,
		MaxQuantity: req.MaxQuantity,
		Active:      true,
	}
	if req.Active != nil {
		tt.Active = *req.Active
	}
	if err := ec.DB.Create(&tt).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Ticket type created",
		Status:  fiber.StatusCreated,
		Data:    tt,
	})
}

// UpdateTicketType applies a partial update to a type.
func (ec *EventController) UpdateTicketType(c *fiber.Ctx) error {
	id, err := paramID(c, "typeId")
	if err != nil {
		return fail(c, err)
	}

	var tt eventModel.TicketType
	if err := ec.DB.First(&tt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, errs.NotFoundf("ticket type %d not found", id))
		}
		return fail(c, err)
	}

	var req eventTypes.TicketTypeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if req.Name != nil {
		tt.Name = *req.Name
	}
	if req.Price != nil {
		tt.Price = *req.Price
	}
	if req.MaxQuantity != nil {
		tt.MaxQuantity = req.MaxQuantity
	}
	if req.Active != nil {
		tt.Active = *req.Active
	}

	if err := ec.DB.Save(&tt).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ticket type updated",
		Status:  fiber.StatusOK,
		Data:    tt,
	})
}
