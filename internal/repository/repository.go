package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"line-reservation-bot/internal/model"
)

// Repository wraps all reservation persistence operations.
type Repository struct {
	db *gorm.DB
}

// New creates a Repository backed by the given database handle.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HasPendingOnDate reports whether the sender already holds a pending
// reservation for the given date at the store. This is the duplicate
// guard before insert; it is not transactionally atomic with the
// insert, so concurrent double-submission can still slip one through.
func (r *Repository) HasPendingOnDate(ctx context.Context, userID, date, storeID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ? AND store_id = ? AND date = ? AND status = ?",
			userID, storeID, date, model.StatusPending).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("database error checking pending reservation: %w", result.Error)
	}
	return count > 0, nil
}

// Create inserts a new pending reservation and fills in its assigned id.
func (r *Repository) Create(ctx context.Context, reservation *model.Reservation) error {
	reservation.Status = model.StatusPending
	result := r.db.WithContext(ctx).Create(reservation)
	if result.Error != nil {
		return fmt.Errorf("failed to create reservation: %w", result.Error)
	}
	return nil
}

// ListUpcoming returns the sender's reservations from the given date
// onward, soonest first, capped at limit.
func (r *Repository) ListUpcoming(ctx context.Context, userID, storeID string, from time.Time, limit int) ([]model.Reservation, error) {
	var reservations []model.Reservation
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ? AND date >= ?",
			userID, storeID, from.Format("2006-01-02")).
		Order("date ASC").
		Order("time ASC").
		Limit(limit).
		Find(&reservations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list upcoming reservations: %w", result.Error)
	}
	return reservations, nil
}

// DueForReminder returns the pending reservations on the given date,
// used by the next-day reminder job.
func (r *Repository) DueForReminder(ctx context.Context, storeID string, date time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND date = ? AND status = ?",
			storeID, date.Format("2006-01-02"), model.StatusPending).
		Find(&reservations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find reservations due for reminder: %w", result.Error)
	}
	return reservations, nil
}

// LogDelivery records the outcome of a reply or push delivery attempt.
func (r *Repository) LogDelivery(ctx context.Context, userID string, reservationID *uint, kind, status, errorMsg string) error {
	entry := model.DeliveryLog{
		UserID:        userID,
		ReservationID: reservationID,
		Kind:          kind,
		Status:        status,
		ErrorMsg:      errorMsg,
		CreatedAt:     time.Now(),
	}
	result := r.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to log delivery attempt: %w", result.Error)
	}
	return nil
}
