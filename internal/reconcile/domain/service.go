package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// Reconcile re-derives the allocation of paid credit against open charges
	// from the current row set: every prior allocation is undone, then credit
	// is applied oldest-first without splitting a single charge. Calling it
	// again with no new entries yields identical totals and assignments.
	// Runs on the caller's transaction.
	Reconcile(ctx context.Context, tx *gorm.DB, tenantAccount string) (Totals, error)
}

var ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
