package purchase

import (
	"errors"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/mailer"
	purchaseTypes "event-ticketing/types/purchase"

	"gorm.io/gorm"
)

// Aggregator answers purchase-level questions: the detail view with its
// computed total, the aggregated payment reminder, and paying every ticket
// of a purchase at once.
type Aggregator struct {
	DB       *gorm.DB
	Notifier mailer.Notifier
}

func NewAggregator(db *gorm.DB, notifier mailer.Notifier) *Aggregator {
	return &Aggregator{DB: db, Notifier: notifier}
}

// Get returns the purchase detail with its tickets ordered by id. The
// total falls back to the sum of type prices when no amount was stored.
func (a *Aggregator) Get(purchaseID uint) (*purchaseTypes.Read, error) {
	var p purchaseModel.Purchase
	if err := a.DB.First(&p, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("purchase %d not found", purchaseID)
		}
		return nil, err
	}
	return a.read(&p)
}

// GetByGUID resolves the deep-link identifier used in payment emails.
func (a *Aggregator) GetByGUID(guid string) (*purchaseTypes.Read, error) {
	var p purchaseModel.Purchase
	if err := a.DB.Where("uuid = ?", guid).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("purchase not found for guid")
		}
		return nil, err
	}
	return a.read(&p)
}

func (a *Aggregator) read(p *purchaseModel.Purchase) (*purchaseTypes.Read, error) {
	var buyer contactModel.Contact
	if err := a.DB.First(&buyer, p.BuyerContactID).Error; err != nil {
		return nil, err
	}

	var tickets []ticketModel.Ticket
	if err := a.DB.Where("purchase_id = ?", p.ID).Order("id asc").Find(&tickets).Error; err != nil {
		return nil, err
	}

	out := &purchaseTypes.Read{
		ID:   p.ID,
		GUID: p.UUID,
		Buyer: purchaseTypes.Buyer{
			ID:        buyer.ID,
			FirstName: buyer.FirstName,
			LastName:  buyer.LastName,
			Email:     buyer.Email,
			Phone:     buyer.Phone,
		},
		ExternalPaymentRef: p.ExternalPaymentRef,
		Currency:           p.Currency,
		CreatedAt:          p.CreatedAt,
	}

	computed := 0
	for _, t := range tickets {
		row := purchaseTypes.Ticket{
			ID:              t.ID,
			EventID:         t.EventID,
			TicketNumber:    t.TicketNumber,
			ShortCode:       t.ShortCode,
			Status:          t.Status.String(),
			PaymentStatus:   t.PaymentStatus.String(),
			HolderContactID: t.HolderContactID,
			TypeID:          t.TicketTypeID,
		}

		var ev eventModel.Event
		if err := a.DB.First(&ev, t.EventID).Error; err == nil {
			row.EventTitle = ev.Title
			row.EventStartsAt = ev.StartsAt
			row.EventEndsAt = ev.EndsAt
		}
		if t.TicketTypeID != nil {
			var tt eventModel.TicketType
			if err := a.DB.First(&tt, *t.TicketTypeID).Error; err == nil {
				row.TypeName = &tt.Name
				row.TypePrice = tt.Price
				computed += tt.Price
			}
		}
		out.Tickets = append(out.Tickets, row)
	}

	if p.TotalAmount != nil {
		out.TotalAmount = *p.TotalAmount
	} else {
		out.TotalAmount = computed
	}
	return out, nil
}

// ResendPayment sends the buyer one aggregated reservation reminder with a
// line per ticket type and the purchase deep link.
func (a *Aggregator) ResendPayment(purchaseID uint) error {
	var p purchaseModel.Purchase
	if err := a.DB.First(&p, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("purchase %d not found", purchaseID)
		}
		return err
	}
	var buyer contactModel.Contact
	if err := a.DB.First(&buyer, p.BuyerContactID).Error; err != nil {
		return errs.Validationf("purchase %d has no buyer contact", p.ID)
	}

	var tickets []ticketModel.Ticket
	if err := a.DB.Where("purchase_id = ?", p.ID).Find(&tickets).Error; err != nil {
		return err
	}
	if len(tickets) == 0 {
		return errs.NotFoundf("purchase %d has no tickets", p.ID)
	}

	ev, err := a.firstEvent(tickets)
	if err != nil {
		return err
	}

	lines, total := a.groupLines(tickets)
	a.Notifier.Notify(mailer.KindReservationBuyer, buyer.Email, mailer.Context{
		EventTitle:         ev.Title,
		EventDateTime:      mailer.EventWhen(ev),
		BuyerName:          buyer.FullName(),
		Lines:              lines,
		TotalAmount:        total,
		Currency:           p.Currency,
		ReservationExpires: mailer.ReservationExpires(),
		PayLink:            mailer.PurchasePayLink(p.UUID),
		Related:            mailer.Related{EventID: &ev.ID, PurchaseID: &p.ID},
	})
	return nil
}

// Pay marks every ticket of the purchase paid and mails each holder their
// ticket. Held tickets without a code are paid silently; their ticket
// email goes out when a holder is bound.
func (a *Aggregator) Pay(purchaseID uint) (*purchaseTypes.PayResponse, error) {
	var (
		tickets []ticketModel.Ticket
		mails   []struct {
			to  string
			ctx mailer.Context
		}
	)

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var p purchaseModel.Purchase
		if err := tx.First(&p, purchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("purchase %d not found", purchaseID)
			}
			return err
		}

		if err := tx.Where("purchase_id = ?", p.ID).Order("id asc").Find(&tickets).Error; err != nil {
			return err
		}
		if err := tx.Model(&ticketModel.Ticket{}).
			Where("purchase_id = ?", p.ID).
			Update("payment_status", ticketModel.PaymentPaid).Error; err != nil {
			return err
		}

		for i := range tickets {
			t := &tickets[i]
			if t.HolderContactID == nil || t.ShortCode == nil {
				continue
			}
			var holder contactModel.Contact
			if err := tx.First(&holder, *t.HolderContactID).Error; err != nil {
				continue
			}
			ev, err := loadEventRow(tx, t.EventID)
			if err != nil {
				continue
			}
			mails = append(mails, struct {
				to  string
				ctx mailer.Context
			}{
				to: holder.Email,
				ctx: mailer.Context{
					EventTitle:    ev.Title,
					EventDateTime: mailer.EventWhen(ev),
					HolderName:    holder.FullName(),
					ShortCode:     *t.ShortCode,
					TicketNumber:  derefStr(t.TicketNumber),
					ViewLink:      mailer.ViewLink(t.UUID),
					Related:       mailer.Related{EventID: &t.EventID, TicketID: &t.ID, PurchaseID: &purchaseID},
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, m := range mails {
		a.Notifier.Notify(mailer.KindTicket, m.to, m.ctx)
	}
	return &purchaseTypes.PayResponse{Paid: true, Tickets: len(tickets)}, nil
}

func (a *Aggregator) firstEvent(tickets []ticketModel.Ticket) (*eventModel.Event, error) {
	return loadEventRow(a.DB, tickets[0].EventID)
}

// groupLines folds tickets into one line per ticket type.
func (a *Aggregator) groupLines(tickets []ticketModel.Ticket) ([]mailer.Line, int) {
	type agg struct {
		name  string
		qty   int
		price int
	}
	byType := map[uint]*agg{}
	order := []uint{}
	noType := &agg{name: "Ticket"}

	for _, t := range tickets {
		if t.TicketTypeID == nil {
			noType.qty++
			continue
		}
		g, ok := byType[*t.TicketTypeID]
		if !ok {
			g = &agg{name: "Ticket"}
			var tt eventModel.TicketType
			if err := a.DB.First(&tt, *t.TicketTypeID).Error; err == nil {
				g.name = tt.Name
				g.price = tt.Price
			}
			byType[*t.TicketTypeID] = g
			order = append(order, *t.TicketTypeID)
		}
		g.qty++
	}

	var lines []mailer.Line
	total := 0
	for _, id := range order {
		g := byType[id]
		lines = append(lines, mailer.Line{TypeName: g.name, Quantity: g.qty, UnitPrice: g.price, Subtotal: g.qty * g.price})
		total += g.qty * g.price
	}
	if noType.qty > 0 {
		lines = append(lines, mailer.Line{TypeName: noType.name, Quantity: noType.qty})
	}
	return lines, total
}

func loadEventRow(tx *gorm.DB, eventID uint) (*eventModel.Event, error) {
	var ev eventModel.Event
	if err := tx.First(&ev, eventID).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
