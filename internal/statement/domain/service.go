package domain

import (
	"context"
	"errors"
	"io"
)

type Service interface {
	// WriteCSV streams one tenant's ledger rows for a statement month as
	// date, entry_type, category, amount, status, note.
	WriteCSV(ctx context.Context, w io.Writer, tenantAccount, month string) error

	// RenderPDF builds the same statement as a PDF document.
	RenderPDF(ctx context.Context, tenantAccount, month string) (io.Reader, error)
}

var (
	ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
	ErrInvalidMonth         = errors.New("invalid_month")
)
