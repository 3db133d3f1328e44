package database

import (
	"fmt"
	"os"

	"event-ticketing/logger"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	emaillogModel "event-ticketing/models/emaillog"
	eventModel "event-ticketing/models/event"
	logModel "event-ticketing/models/log"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order.
func autoMigrate() error {
	// Stage 1: foundation models without foreign keys
	stage1Models := []interface{}{
		&eventModel.Event{},
		&contactModel.Contact{},
		&customerModel.Customer{},
	}
	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: models referencing stage 1
	stage2Models := []interface{}{
		&eventModel.TicketType{},
		&purchaseModel.Purchase{},
	}
	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: tickets reference everything above
	stage3Models := []interface{}{
		&ticketModel.Ticket{},
	}
	for _, model := range stage3Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Remaining models: logging
	remainingModels := []interface{}{
		&emaillogModel.EmailLog{},
		&logModel.Log{},
	}
	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// Ticket indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status)").Error; err != nil {
		return fmt.Errorf("failed to create ticket status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_payment_status ON tickets(payment_status)").Error; err != nil {
		return fmt.Errorf("failed to create ticket payment_status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_checked_in_at ON tickets(checked_in_at)").Error; err != nil {
		return fmt.Errorf("failed to create ticket checked_in_at index: %w", err)
	}

	// Event indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)").Error; err != nil {
		return fmt.Errorf("failed to create event starts_at index: %w", err)
	}

	// Email log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_email_logs_created_at ON email_logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create email log created_at index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_email_logs_template_name ON email_logs(template_name)").Error; err != nil {
		return fmt.Errorf("failed to create email log template_name index: %w", err)
	}

	// Request log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
