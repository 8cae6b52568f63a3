package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PaymentStatus string

const (
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentTypeRent PaymentType = "rent"
	PaymentTypeBill PaymentType = "bill"
)

const PayerRoleTenant = "tenant"

// Payment is an inbound money movement. Rows are immutable once written
// except for Status, which walks submitted -> paid|failed exactly once.
type Payment struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	PayerAccount string        `gorm:"not null;index" json:"payer_account"`
	PayerRole    string        `gorm:"not null" json:"payer_role"`
	PaymentType  PaymentType   `gorm:"not null" json:"payment_type"`
	Provider     string        `gorm:"not null" json:"provider"`
	Reference    string        `gorm:"not null;uniqueIndex" json:"reference"`
	Amount       int64         `gorm:"not null" json:"amount"`
	Status       PaymentStatus `gorm:"not null;default:'submitted'" json:"status"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

type MethodStatus string

const (
	MethodStatusActive  MethodStatus = "active"
	MethodStatusRemoved MethodStatus = "removed"
)

type PaymentMethod struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantAccount string       `gorm:"not null;index" json:"tenant_account"`
	Provider      string       `gorm:"not null" json:"provider"`
	Label         string       `gorm:"not null;default:''" json:"label"`
	Last4         string       `gorm:"not null;default:''" json:"last4"`
	IsDefault     bool         `gorm:"not null;default:false" json:"is_default"`
	Status        MethodStatus `gorm:"not null;default:'active'" json:"status"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
