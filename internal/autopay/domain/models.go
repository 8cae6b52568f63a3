package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Setting holds one tenant's autopay configuration. One row per tenant
// account, updated in place.
type Setting struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantAccount    string        `gorm:"not null;uniqueIndex" json:"tenant_account"`
	PaymentMethodID  *snowflake.ID `json:"payment_method_id,omitempty"`
	IsEnabled        bool          `gorm:"not null;default:false" json:"is_enabled"`
	PaymentDay       int           `gorm:"not null;default:1" json:"payment_day"`
	NotifyDaysBefore int           `gorm:"not null;default:3" json:"notify_days_before"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Setting) TableName() string { return "autopay_settings" }
