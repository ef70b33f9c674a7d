package model

import (
	"time"

	"gorm.io/gorm"
)

// Reservation status values. Only pending rows are created by the
// webhook pipeline; confirmation and cancellation are handled by
// separate admin flows.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reservation represents a persisted restaurant reservation
type Reservation struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID   string         `json:"store_id" gorm:"type:varchar(64);not null;index:idx_store_user_date"`
	UserID    string         `json:"user_id" gorm:"type:varchar(64);not null;index:idx_store_user_date"`
	Message   string         `json:"message" gorm:"type:varchar(200)"`
	People    int            `json:"people" gorm:"not null"`
	Date      string         `json:"date" gorm:"type:varchar(10);not null;index:idx_store_user_date"`
	Time      string         `json:"time" gorm:"type:varchar(8);not null"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}
