package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type AssignLeaseRequest struct {
	TenantAccount string
	OwnerAccount  string
	PropertyID    snowflake.ID
	UnitLabel     string
	StartDate     time.Time
	UnitRent      int64
}

type AddRoommateRequest struct {
	LeaseID       snowflake.ID
	TenantAccount string
	SharePercent  int
}

type Service interface {
	// Resolve returns the billing context for the account, or nil when the
	// account holds neither an active lease nor an active roommate share.
	// A primary lease always wins over a roommate share on another lease.
	// Callers inside a transaction pass their handle so the lookup joins it;
	// a nil tx reads through the service's own pool.
	Resolve(ctx context.Context, tx *gorm.DB, tenantAccount string) (*LeaseView, error)

	AssignLease(ctx context.Context, req AssignLeaseRequest) (Lease, error)
	TerminateLease(ctx context.Context, leaseID snowflake.ID) error
	AddRoommate(ctx context.Context, req AddRoommateRequest) (RoommateShare, error)
	RemoveRoommate(ctx context.Context, shareID snowflake.ID) error

	ListBillableAccounts(ctx context.Context) ([]string, error)
}

var (
	ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
	ErrInvalidOwnerAccount  = errors.New("invalid_owner_account")
	ErrInvalidUnitRent      = errors.New("invalid_unit_rent")
	ErrInvalidStartDate     = errors.New("invalid_start_date")
	ErrInvalidSharePercent  = errors.New("invalid_share_percent")
	ErrShareOverAllocated   = errors.New("share_over_allocated")
	ErrLeaseNotFound        = errors.New("lease_not_found")
	ErrShareNotFound        = errors.New("share_not_found")
	ErrLeaseAlreadyActive   = errors.New("lease_already_active")
)
