package mailer

import (
	"encoding/json"
	"os"
	"time"

	"event-ticketing/logger"
	emaillogModel "event-ticketing/models/emaillog"
	ticketModel "event-ticketing/models/ticket"

	"gorm.io/gorm"
)

type job struct {
	Kind Kind
	To   string
	Ctx  Context
}

// Dispatcher delivers notifications without blocking the request path.
// Jobs are pushed onto a buffered channel and drained by Process running in
// its own goroutine, the same shape as the async request logger. Every
// attempt is recorded as an email log row; a successful ticket_email also
// marks the ticket as delivered.
type Dispatcher struct {
	db        *gorm.DB
	transport Transport
	from      string
	channel   chan job
}

func NewDispatcher(db *gorm.DB, transport Transport) *Dispatcher {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "tickets@example.com"
	}
	return &Dispatcher{
		db:        db,
		transport: transport,
		from:      from,
		channel:   make(chan job, 100),
	}
}

// Notify enqueues a notification. It never blocks: when the channel is full
// the job is dropped and the drop is logged.
func (d *Dispatcher) Notify(kind Kind, to string, ctx Context) bool {
	select {
	case d.channel <- job{Kind: kind, To: to, Ctx: ctx}:
		return true
	default:
		logger.Warning("mail queue full, dropping " + string(kind) + " to " + to)
		return false
	}
}

// Process drains the queue. Run it in a goroutine at startup.
func (d *Dispatcher) Process() {
	logger.Info("Starting mail dispatcher...")

	for j := range d.channel {
		d.deliver(j)
	}
}

// Close stops accepting jobs and lets Process drain what remains.
func (d *Dispatcher) Close() {
	close(d.channel)
}

func (d *Dispatcher) deliver(j job) {
	out, err := render(j.Kind, j.Ctx)
	if err != nil {
		logger.Error("mail render failed for "+string(j.Kind), err)
		return
	}

	sendErr := d.transport.Send(Message{
		To:      j.To,
		From:    d.from,
		Subject: out.Subject,
		Text:    out.Text,
	})

	row := emaillogModel.EmailLog{
		ToEmail:      j.To,
		Subject:      out.Subject,
		TextBody:     out.Text,
		TemplateName: string(j.Kind),
		Status:       emaillogModel.StatusSent,
		EventID:      j.Ctx.Related.EventID,
		TicketID:     j.Ctx.Related.TicketID,
		PurchaseID:   j.Ctx.Related.PurchaseID,
	}
	if ctxJSON, err := json.Marshal(j.Ctx); err == nil {
		s := string(ctxJSON)
		row.Context = &s
	}
	if sendErr != nil {
		row.Status = emaillogModel.StatusFailed
		msg := sendErr.Error()
		row.ErrorMessage = &msg
		logger.Error("mail send failed for "+string(j.Kind)+" to "+j.To, sendErr)
	}

	if err := d.db.Create(&row).Error; err != nil {
		logger.Error("failed to insert email log", err)
	}

	if sendErr == nil && j.Kind == KindTicket && j.Ctx.Related.TicketID != nil {
		d.markDelivered(*j.Ctx.Related.TicketID)
	}
}

func (d *Dispatcher) markDelivered(ticketID uint) {
	now := time.Now()
	err := d.db.Model(&ticketModel.Ticket{}).
		Where("id = ?", ticketID).
		Updates(map[string]interface{}{
			"delivery_status": ticketModel.DeliverySent,
			"delivered_at":    &now,
		}).Error
	if err != nil {
		logger.Error("failed to mark ticket delivered", err)
	}
}
