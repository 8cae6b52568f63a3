package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lease *Lease) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Lease, error)
	FindActiveByPrimary(ctx context.Context, db *gorm.DB, tenantAccount string) (*Lease, error)
	FindActiveShareByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (*RoommateShare, error)
	ListActiveShares(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]RoommateShare, error)
	End(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertShare(ctx context.Context, db *gorm.DB, share *RoommateShare) error
	RemoveShare(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ListBillableAccounts returns every account holding an active lease or an
	// active roommate share, deduplicated. The sweep bills each of them.
	ListBillableAccounts(ctx context.Context, db *gorm.DB) ([]string, error)
}
