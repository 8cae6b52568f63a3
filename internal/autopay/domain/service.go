package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, s *Setting) error
	Update(ctx context.Context, db *gorm.DB, s *Setting) error
	FindByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (*Setting, error)
	ListEnabled(ctx context.Context, db *gorm.DB) ([]Setting, error)
}

type UpdateRequest struct {
	TenantAccount    string        `json:"tenant_account"`
	PaymentMethodID  *snowflake.ID `json:"payment_method_id,omitempty"`
	IsEnabled        bool          `json:"is_enabled"`
	PaymentDay       int           `json:"payment_day"`
	NotifyDaysBefore int           `json:"notify_days_before"`
}

type Service interface {
	Get(ctx context.Context, tenantAccount string) (*Setting, error)
	Put(ctx context.Context, req UpdateRequest) (*Setting, error)

	// SendReminders notifies every enabled tenant whose next payment day is
	// exactly NotifyDaysBefore days away. Returns the number of reminders sent.
	SendReminders(ctx context.Context, now time.Time) (int, error)

	// RunAutopay charges every enabled tenant whose payment day has arrived
	// this month. Per-tenant failures are collected, never abort the sweep.
	RunAutopay(ctx context.Context, now time.Time) error
}

var (
	ErrInvalidTenantAccount = errors.New("invalid_tenant_account")
	ErrInvalidPaymentDay    = errors.New("invalid_payment_day")
	ErrInvalidNotifyDays    = errors.New("invalid_notify_days_before")
)
