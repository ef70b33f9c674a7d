package model

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryLog represents the outcome of one reply or push delivery to
// the LINE Messaging API. Failed deliveries cannot be surfaced to the
// user (the reply token is already spent), so the log is the only
// record left for manual reconciliation.
type DeliveryLog struct {
	ID            uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        string         `json:"user_id" gorm:"type:varchar(64);not null;index"`
	ReservationID *uint          `json:"reservation_id" gorm:"index"`
	Kind          string         `json:"kind" gorm:"type:varchar(20);not null"`
	Status        string         `json:"status" gorm:"type:varchar(20);not null"`
	ErrorMsg      string         `json:"error_msg" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for DeliveryLog
func (DeliveryLog) TableName() string {
	return "delivery_logs"
}
