package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *LedgerEntry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LedgerEntry, error)
	FindBySourcePayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*LedgerEntry, error)

	// RefreshFromPayment updates the mutable projection fields of a synced
	// entry. Lease attribution stays as snapshotted at first insert.
	RefreshFromPayment(ctx context.Context, db *gorm.DB, entryID snowflake.ID, amount int64, status EntryStatus, note string) error

	FindMonthRentCharge(ctx context.Context, db *gorm.DB, tenantAccount, month string) (*LedgerEntry, error)
	HasMonthLateFee(ctx context.Context, db *gorm.DB, tenantAccount, month string) (bool, error)
	MonthChargedTotal(ctx context.Context, db *gorm.DB, tenantAccount, month string) (int64, error)
	MonthPaidTotal(ctx context.Context, db *gorm.DB, tenantAccount, month string) (int64, error)

	// ResetAllocations flips every non-void charge-like entry back to open so a
	// reconciliation pass starts from a clean slate.
	ResetAllocations(ctx context.Context, db *gorm.DB, tenantAccount string) error
	PaidCredit(ctx context.Context, db *gorm.DB, tenantAccount string) (int64, error)
	ListOpenCharges(ctx context.Context, db *gorm.DB, tenantAccount string) ([]LedgerEntry, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	SumByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (TenantSums, error)

	ListByMonth(ctx context.Context, db *gorm.DB, tenantAccount, month string) ([]LedgerEntry, error)
	SetVoid(ctx context.Context, db *gorm.DB, id snowflake.ID, note string) error
}

// TenantSums aggregates non-void entries per tenant account.
type TenantSums struct {
	Charges   int64
	Paid      int64
	Submitted int64
	Failed    int64
}
