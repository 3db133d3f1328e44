package contact

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"event-ticketing/errs"
	"event-ticketing/logger"
	contactModel "event-ticketing/models/contact"
	"event-ticketing/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ContactController serves the consolidated people directory.
type ContactController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewContactController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *ContactController {
	return &ContactController{
		DB:     db,
		Logger: asyncLogger,
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errs.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("contact operation failed", err)
	}
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
		Data:    nil,
	})
}

func (cc *ContactController) loadContact(c *fiber.Ctx) (*contactModel.Contact, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, errs.Validationf("invalid id %q", c.Params("id"))
	}
	var contact contactModel.Contact
	if err := cc.DB.First(&contact, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("contact %d not found", id)
		}
		return nil, err
	}
	return &contact, nil
}

type directoryRow struct {
	ID              uint       `json:"id"`
	FirstName       *string    `json:"first_name,omitempty"`
	LastName        *string    `json:"last_name,omitempty"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone,omitempty"`
	EventsPurchased int64      `json:"events_purchased"`
	TicketsHeld     int64      `json:"tickets_held"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
}

type idCount struct {
	ID    uint
	Count int64
}

type idTime struct {
	ID   uint
	LastAt *time.Time
}

// Index lists contacts with buyer/holder activity counts. The optional
// roles filter ("buyer", "holder", or both) keeps only contacts with
// matching activity on the returned page.
func (cc *ContactController) Index(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := cc.DB.Model(&contactModel.Contact{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"lower(email) LIKE ? OR lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(phone) LIKE ?",
			like, like, like, like,
		)
	}

	var contacts []contactModel.Contact
	if err := q.Order("id asc").Limit(limit).Offset(offset).Find(&contacts).Error; err != nil {
		return fail(c, err)
	}
	if len(contacts) == 0 {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Message: "Contacts retrieved",
			Status:  fiber.StatusOK,
			Data:    []directoryRow{},
		})
	}

	ids := make([]uint, 0, len(contacts))
	for _, ct := range contacts {
		ids = append(ids, ct.ID)
	}

	evCounts, err := cc.eventsPurchased(ids)
	if err != nil {
		return fail(c, err)
	}
	tixCounts, err := cc.ticketsHeld(ids)
	if err != nil {
		return fail(c, err)
	}
	lastSeen, err := cc.lastActivity(ids)
	if err != nil {
		return fail(c, err)
	}

	buyerFilter, holderFilter := rolesFilter(c.Query("roles"))

	rows := make([]directoryRow, 0, len(contacts))
	for _, ct := range contacts {
		evs := evCounts[ct.ID]
		tix := tixCounts[ct.ID]
		if buyerFilter || holderFilter {
			if !(buyerFilter && evs > 0) && !(holderFilter && tix > 0) {
				continue
			}
		}
		rows = append(rows, directoryRow{
			ID:              ct.ID,
			FirstName:       ct.FirstName,
			LastName:        ct.LastName,
			Email:           ct.Email,
			Phone:           ct.Phone,
			EventsPurchased: evs,
			TicketsHeld:     tix,
			LastActivity:    lastSeen[ct.ID],
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Contacts retrieved",
		Status:  fiber.StatusOK,
		Data:    rows,
	})
}

func rolesFilter(raw string) (buyer, holder bool) {
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "buyer":
			buyer = true
		case "holder":
			holder = true
		}
	}
	return buyer, holder
}

func (cc *ContactController) eventsPurchased(ids []uint) (map[uint]int64, error) {
	var rows []idCount
	err := cc.DB.Table("purchases").
		Select("purchases.buyer_contact_id as id, count(distinct tickets.event_id) as count").
		Joins("JOIN tickets ON tickets.purchase_id = purchases.id").
		Where("purchases.buyer_contact_id IN ?", ids).
		Group("purchases.buyer_contact_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

func (cc *ContactController) ticketsHeld(ids []uint) (map[uint]int64, error) {
	var rows []idCount
	err := cc.DB.Table("tickets").
		Select("holder_contact_id as id, count(*) as count").
		Where("holder_contact_id IN ?", ids).
		Group("holder_contact_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

// lastActivity folds the latest purchase and ticket timestamps per contact.
func (cc *ContactController) lastActivity(ids []uint) (map[uint]*time.Time, error) {
	out := make(map[uint]*time.Time, len(ids))

	var purchases []idTime
	err := cc.DB.Table("purchases").
		Select("buyer_contact_id as id, max(created_at) as last_at").
		Where("buyer_contact_id IN ?", ids).
		Group("buyer_contact_id").
		Scan(&purchases).Error
	if err != nil {
		return nil, err
	}
	for _, r := range purchases {
		out[r.ID] = maxTime(out[r.ID], r.LastAt)
	}

	for _, column := range []string{"created_at", "checked_in_at", "delivered_at"} {
		var tickets []idTime
		err := cc.DB.Table("tickets").
			Select("holder_contact_id as id, max("+column+") as last_at").
			Where("holder_contact_id IN ?", ids).
			Group("holder_contact_id").
			Scan(&tickets).Error
		if err != nil {
			return nil, err
		}
		for _, r := range tickets {
			out[r.ID] = maxTime(out[r.ID], r.LastAt)
		}
	}
	return out, nil
}

func maxTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}

type buyerEventRow struct {
	EventID uint   `json:"event_id"`
	Title   string `json:"title"`
	Tickets int64  `json:"tickets"`
}

// Show returns one contact with buyer and holder summaries.
func (cc *ContactController) Show(c *fiber.Ctx) error {
	contact, err := cc.loadContact(c)
	if err != nil {
		return fail(c, err)
	}

	var buyerEvents []buyerEventRow
	err = cc.DB.Table("events").
		Select("events.id as event_id, events.title as title, count(tickets.id) as tickets").
		Joins("JOIN tickets ON tickets.event_id = events.id").
		Joins("JOIN purchases ON purchases.id = tickets.purchase_id").
		Where("purchases.buyer_contact_id = ?", contact.ID).
		Group("events.id, events.title").
		Order("events.id asc").
		Scan(&buyerEvents).Error
	if err != nil {
		return fail(c, err)
	}

	var heldCount int64
	err = cc.DB.Table("tickets").Where("holder_contact_id = ?", contact.ID).Count(&heldCount).Error
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Contact retrieved",
		Status:  fiber.StatusOK,
		Data: fiber.Map{
			"id":         contact.ID,
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"email":      contact.Email,
			"phone":      contact.Phone,
			"buyer":      fiber.Map{"events": buyerEvents},
			"holder":     fiber.Map{"tickets_count": heldCount},
		},
	})
}

type purchaseRow struct {
	ID                 uint      `json:"id"`
	ExternalPaymentRef *string   `json:"external_payment_ref,omitempty"`
	TotalAmount        *int      `json:"total_amount,omitempty"`
	Currency           string    `json:"currency"`
	CreatedAt          time.Time `json:"created_at"`
	Tickets            int64     `json:"tickets"`
}

// Purchases lists the contact's purchases with ticket counts, optionally
// scoped to one event.
func (cc *ContactController) Purchases(c *fiber.Ctx) error {
	contact, err := cc.loadContact(c)
	if err != nil {
		return fail(c, err)
	}

	q := cc.DB.Table("purchases").
		Select("purchases.id, purchases.external_payment_ref, purchases.total_amount, purchases.currency, purchases.created_at, count(tickets.id) as tickets").
		Joins("JOIN tickets ON tickets.purchase_id = purchases.id").
		Where("purchases.buyer_contact_id = ?", contact.ID).
		Group("purchases.id, purchases.external_payment_ref, purchases.total_amount, purchases.currency, purchases.created_at").
		Order("purchases.created_at desc")
	if eventID := c.QueryInt("event_id", 0); eventID > 0 {
		q = q.Where("tickets.event_id = ?", eventID)
	}

	var rows []purchaseRow
	if err := q.Scan(&rows).Error; err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Purchases retrieved",
		Status:  fiber.StatusOK,
		Data:    rows,
	})
}

type heldTicketRow struct {
	ID            uint       `json:"id"`
	TicketNumber  *string    `json:"ticket_number,omitempty"`
	ShortCode     *string    `json:"short_code,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	EventID       uint       `json:"event_id"`
	EventTitle    string     `json:"event_title"`
	EventStartsAt time.Time  `json:"event_starts_at"`
	EventEndsAt   *time.Time `json:"event_ends_at,omitempty"`
	TypeID        *uint      `json:"type_id,omitempty"`
	TypeName      *string    `json:"type_name,omitempty"`
}

// HolderTickets lists every ticket held by the contact, newest first.
func (cc *ContactController) HolderTickets(c *fiber.Ctx) error {
	contact, err := cc.loadContact(c)
	if err != nil {
		return fail(c, err)
	}

	var rows []heldTicketRow
	err = cc.DB.Table("tickets").
		Select(`tickets.id, tickets.ticket_number, tickets.short_code, tickets.payment_status,
			tickets.status, tickets.checked_in_at, events.id as event_id, events.title as event_title,
			events.starts_at as event_starts_at, events.ends_at as event_ends_at,
			tickets.ticket_type_id as type_id, ticket_types.name as type_name`).
		Joins("JOIN events ON events.id = tickets.event_id").
		Joins("LEFT JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Where("tickets.holder_contact_id = ?", contact.ID).
		Order("tickets.id desc").
		Scan(&rows).Error
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Holder tickets retrieved",
		Status:  fiber.StatusOK,
		Data:    rows,
	})
}
