package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type AddAdjustmentRequest struct {
	TenantAccount  string
	Amount         int64
	Note           string
	StatementMonth string
}

type Service interface {
	// SyncPayments projects raw payment rows into ledger entries, idempotently.
	// It runs on the caller's transaction so the sync→charge→reconcile sequence
	// commits atomically.
	SyncPayments(ctx context.Context, tx *gorm.DB, scope SyncScope) error

	// VoidEntry marks an open entry void. Entries are never deleted.
	VoidEntry(ctx context.Context, id snowflake.ID, note string) error

	// AddAdjustment records a positive correction against the account.
	AddAdjustment(ctx context.Context, req AddAdjustmentRequest) (LedgerEntry, error)
}

var (
	ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidMonth         = errors.New("invalid_statement_month")
	ErrEntryNotFound        = errors.New("entry_not_found")
	ErrEntryNotVoidable     = errors.New("entry_not_voidable")
)
