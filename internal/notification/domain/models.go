package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	CategoryAutopayReminder = "autopay_reminder"
	CategoryAutopayResult   = "autopay_result"
	CategoryPaymentStatus   = "payment_status"
	CategoryBilling         = "billing"
)

type Notification struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Account   string            `gorm:"not null;index" json:"account"`
	Text      string            `gorm:"not null" json:"text"`
	Link      string            `gorm:"not null;default:''" json:"link"`
	Category  string            `gorm:"not null;default:''" json:"category"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
