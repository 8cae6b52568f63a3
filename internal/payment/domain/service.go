package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SubmitRequest struct {
	PayerAccount string      `json:"payer_account"`
	PayerRole    string      `json:"payer_role"`
	PaymentType  PaymentType `json:"payment_type"`
	Provider     string      `json:"provider"`
	Amount       int64       `json:"amount"`
}

type AddMethodRequest struct {
	TenantAccount string `json:"tenant_account"`
	Provider      string `json:"provider"`
	Label         string `json:"label"`
	Last4         string `json:"last4"`
	IsDefault     bool   `json:"is_default"`
}

type Service interface {
	// Submit records a manual payment with status submitted and runs the
	// billing pipeline for the payer so the ledger mirrors it immediately.
	Submit(ctx context.Context, req SubmitRequest) (*Payment, error)

	// SetStatus moves a payment from submitted to paid or failed and re-runs
	// the pipeline. Any other transition is rejected.
	SetStatus(ctx context.Context, id snowflake.ID, status PaymentStatus) (*Payment, error)

	FindByID(ctx context.Context, id snowflake.ID) (*Payment, error)

	// FindAutopayForMonth returns the autopay-originated rent payment for the
	// month containing now, or nil when none exists.
	FindAutopayForMonth(ctx context.Context, tenantAccount string, now time.Time) (*Payment, error)

	// ResolveMethod picks the charge instrument: the explicit method when given
	// and active, else the default, else any active one. nil when none.
	ResolveMethod(ctx context.Context, tenantAccount string, methodID *snowflake.ID) (*PaymentMethod, error)

	AddMethod(ctx context.Context, req AddMethodRequest) (*PaymentMethod, error)
	RemoveMethod(ctx context.Context, tenantAccount string, id snowflake.ID) error
	ListMethods(ctx context.Context, tenantAccount string) ([]PaymentMethod, error)

	// RecordAutopayPayment inserts an already-settled autopay payment and
	// returns it. Used by the autopay sweep only.
	RecordAutopayPayment(ctx context.Context, tenantAccount, provider string, amount int64, at time.Time) (*Payment, error)
}

var (
	ErrInvalidPayerAccount = errors.New("invalid_payer_account")
	ErrInvalidPayerRole    = errors.New("invalid_payer_role")
	ErrInvalidPaymentType  = errors.New("invalid_payment_type")
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrPaymentNotFound     = errors.New("payment_not_found")
	ErrStatusNotMutable    = errors.New("status_not_mutable")
	ErrMethodNotFound      = errors.New("payment_method_not_found")
)
