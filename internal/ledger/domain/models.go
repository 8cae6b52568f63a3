package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type EntryType string

const (
	EntryTypeCharge     EntryType = "charge"
	EntryTypePayment    EntryType = "payment"
	EntryTypeLateFee    EntryType = "late_fee"
	EntryTypeAdjustment EntryType = "adjustment"
)

type EntryStatus string

const (
	EntryStatusOpen      EntryStatus = "open"
	EntryStatusPaid      EntryStatus = "paid"
	EntryStatusVoid      EntryStatus = "void"
	EntryStatusSubmitted EntryStatus = "submitted"
	EntryStatusFailed    EntryStatus = "failed"
)

const (
	CategoryRent        = "rent"
	CategoryRentLateFee = "rent_late_fee"
	CategoryRentPayment = "rent_payment"
	CategoryBillPayment = "bill_payment"
	CategoryAdjustment  = "adjustment"
)

// StatementMonthLayout is the YYYY-MM bucket format for ledger entries.
const StatementMonthLayout = "2006-01"

// LedgerEntry is one signed financial event on a tenant's running account.
// Charge-like amounts are positive (increase obligation), payments negative.
// Rows are never deleted; corrections happen via adjustments or void status.
type LedgerEntry struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantAccount   string        `gorm:"not null;index" json:"tenant_account"`
	PropertyID      *snowflake.ID `json:"property_id,omitempty"`
	UnitLabel       string        `gorm:"not null;default:''" json:"unit_label"`
	LeaseID         *snowflake.ID `json:"lease_id,omitempty"`
	EntryType       EntryType     `gorm:"type:text;not null" json:"entry_type"`
	Category        string        `gorm:"type:text;not null" json:"category"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Status          EntryStatus   `gorm:"type:text;not null;default:'open'" json:"status"`
	DueDate         *time.Time    `json:"due_date,omitempty"`
	StatementMonth  string        `gorm:"not null;index" json:"statement_month"`
	Note            string        `gorm:"not null;default:''" json:"note"`
	SourcePaymentID *snowflake.ID `gorm:"uniqueIndex" json:"source_payment_id,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// IsChargeLike reports whether the entry increases the tenant's obligation.
func (e LedgerEntry) IsChargeLike() bool {
	switch e.EntryType {
	case EntryTypeCharge, EntryTypeLateFee, EntryTypeAdjustment:
		return true
	default:
		return false
	}
}

// SyncScope narrows a payment sync to one tenant, one payment, or neither
// (every tenant payment on record).
type SyncScope struct {
	TenantAccount string
	PaymentID     snowflake.ID
}
