package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// EnsureMonthlyCharge guarantees at most one rent charge for the tenant's
	// current statement month, and assesses a late fee once the grace period
	// has lapsed with the month underpaid. Idempotent per month; no-op when
	// the account has no active lease. Runs on the caller's transaction.
	EnsureMonthlyCharge(ctx context.Context, tx *gorm.DB, tenantAccount string, now time.Time) error
}

var ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
