package allocator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"event-ticketing/errs"
	ticketModel "event-ticketing/models/ticket"

	"gorm.io/gorm"
)

// Number of random picks before ShortCode falls back to a linear scan.
const maxRandomAttempts = 20

// ShortCode generates a 3-digit code (000-999) unique among the event's
// existing non-null short codes. Random attempts first, then a sequential
// scan. The check is advisory: two concurrent callers can both see a code
// as free, and the unique index on (event_id, short_code) decides the race.
func ShortCode(tx *gorm.DB, eventID uint) (string, error) {
	for i := 0; i < maxRandomAttempts; i++ {
		code := fmt.Sprintf("%03d", rand.Intn(1000))
		free, err := codeFree(tx, eventID, code)
		if err != nil {
			return "", err
		}
		if free {
			return code, nil
		}
	}

	// Fallback: scan sequentially
	var used []string
	err := tx.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND short_code IS NOT NULL", eventID).
		Pluck("short_code", &used).Error
	if err != nil {
		return "", err
	}
	usedSet := make(map[string]struct{}, len(used))
	for _, c := range used {
		usedSet[c] = struct{}{}
	}
	for i := 0; i < 1000; i++ {
		code := fmt.Sprintf("%03d", i)
		if _, ok := usedSet[code]; !ok {
			return code, nil
		}
	}

	return "", errs.Exhaustedf("no available short codes for event %d; increase capacity or use 4 digits", eventID)
}

// CodeFree reports whether the desired code is unused within the event.
func CodeFree(tx *gorm.DB, eventID uint, code string) (bool, error) {
	return codeFree(tx, eventID, code)
}

func codeFree(tx *gorm.DB, eventID uint, code string) (bool, error) {
	var count int64
	err := tx.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND short_code = ?", eventID, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// NextTicketNumber returns the smallest unused positive integer for the
// event, formatted as a decimal string. Callers must run it inside the
// transaction that also writes the ticket: the per-event advisory lock is
// transaction-scoped and released on commit.
func NextTicketNumber(tx *gorm.DB, eventID uint) (string, error) {
	// Per-event advisory lock to serialize concurrent allocations. If the
	// lock is unavailable (non-Postgres store), proceed best-effort.
	_ = tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(eventID)).Error

	used, err := existingNumbers(tx, eventID)
	if err != nil {
		return "", err
	}
	n := 1
	for {
		if _, ok := used[n]; !ok {
			return strconv.Itoa(n), nil
		}
		n++
	}
}

// existingNumbers collects the event's ticket numbers parsed as positive
// integers. Non-numeric values are ignored.
func existingNumbers(tx *gorm.DB, eventID uint) (map[int]struct{}, error) {
	var raw []string
	err := tx.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND ticket_number IS NOT NULL", eventID).
		Pluck("ticket_number", &raw).Error
	if err != nil {
		return nil, err
	}
	nums := make(map[int]struct{}, len(raw))
	for _, r := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil || n <= 0 {
			continue
		}
		nums[n] = struct{}{}
	}
	return nums, nil
}
