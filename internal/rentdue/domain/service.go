package domain

import (
	"context"
	"errors"
	"time"
)

const (
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
	StatusOpen    = "open"
)

// Summary is the tenant-facing rent position for the current month.
type Summary struct {
	Amount       int64      `json:"amount"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Status       string     `json:"status"`
	SharePercent int        `json:"share_percent"`
}

type Service interface {
	// RentDue returns the current-month summary for a tenant, nil when the
	// tenant has no active lease.
	RentDue(ctx context.Context, tenantAccount string) (*Summary, error)
}

var ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
