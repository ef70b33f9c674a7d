package handlers

import (
	"gorm.io/gorm"

	"line-reservation-bot/internal/ratelimit"
	"line-reservation-bot/internal/reminder"
)

// Handlers contains the operational HTTP handlers
type Handlers struct {
	db       *gorm.DB
	limiter  *ratelimit.Limiter
	reminder *reminder.Scheduler
	storeID  string
}

// NewHandlers creates the operational HTTP handlers
func NewHandlers(db *gorm.DB, limiter *ratelimit.Limiter, rem *reminder.Scheduler, storeID string) *Handlers {
	return &Handlers{db: db, limiter: limiter, reminder: rem, storeID: storeID}
}
