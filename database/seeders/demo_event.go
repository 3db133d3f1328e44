package seeders

import (
	"log"
	"time"

	eventModel "event-ticketing/models/event"
	ticketModel "event-ticketing/models/ticket"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// SeedDemoEvent creates a sample event with ticket types and empty slots so
// a fresh install has something to point the frontend at. Idempotent: keyed
// on the event title.
func SeedDemoEvent(db *gorm.DB) {
	log.Printf("🔍 Checking demo event data integrity...")

	const demoTitle = "Demo Launch Night"

	var existing int64
	if err := db.Model(&eventModel.Event{}).Where("title = ?", demoTitle).Count(&existing).Error; err != nil {
		log.Printf("❌ Failed to check for demo event: %v", err)
		return
	}
	if existing > 0 {
		log.Printf("✅ Demo event already present. No seeding needed.")
		return
	}

	// Next Saturday evening, local time.
	starts := now.New(time.Now()).BeginningOfWeek().AddDate(0, 0, 6).Add(19 * time.Hour)
	ends := starts.Add(5 * time.Hour)
	venue := "The Warehouse"

	ev := eventModel.Event{
		PublicID:     uuid.NewString(),
		Title:        demoTitle,
		StartsAt:     starts,
		EndsAt:       &ends,
		LocationName: &venue,
		Capacity:     100,
	}
	if err := db.Create(&ev).Error; err != nil {
		log.Printf("❌ Failed to seed demo event: %v", err)
		return
	}
	log.Printf("✅ Added: %s (%s)", ev.Title, ev.PublicID)

	vipMax := 20
	types := []eventModel.TicketType{
		{EventID: ev.ID, Name: "VIP", Price: 1500, MaxQuantity: &vipMax, Active: true},
		{EventID: ev.ID, Name: "General Admission", Price: 600, Active: true},
	}
	for i := range types {
		if err := db.Create(&types[i]).Error; err != nil {
			log.Printf("❌ Failed to seed ticket type %s: %v", types[i].Name, err)
		} else {
			log.Printf("✅ Added ticket type: %s", types[i].Name)
		}
	}

	tickets := make([]ticketModel.Ticket, 0, ev.Capacity)
	for i := 0; i < ev.Capacity; i++ {
		tickets = append(tickets, ticketModel.Ticket{
			UUID:    uuid.NewString(),
			EventID: ev.ID,
			Status:  ticketModel.StatusAvailable,
		})
	}
	if err := db.CreateInBatches(&tickets, 200).Error; err != nil {
		log.Printf("❌ Failed to seed ticket slots: %v", err)
		return
	}

	log.Printf("🎉 Seeding completed! Demo event ready with %d slots", len(tickets))
}
