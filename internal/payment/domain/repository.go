package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, at time.Time) error
	FindAutopayForMonth(ctx context.Context, db *gorm.DB, tenantAccount, providerPrefix string, monthStart, monthEnd time.Time) (*Payment, error)

	InsertMethod(ctx context.Context, db *gorm.DB, m *PaymentMethod) error
	FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentMethod, error)
	FindDefaultMethod(ctx context.Context, db *gorm.DB, tenantAccount string) (*PaymentMethod, error)
	FindAnyActiveMethod(ctx context.Context, db *gorm.DB, tenantAccount string) (*PaymentMethod, error)
	ListMethods(ctx context.Context, db *gorm.DB, tenantAccount string) ([]PaymentMethod, error)
	ClearDefault(ctx context.Context, db *gorm.DB, tenantAccount string, at time.Time) error
	SetDefault(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	RemoveMethod(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
