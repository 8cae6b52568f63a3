package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/charge/domain"
	"github.com/smallbiznis/rentledger/internal/config"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	LedgerRepo ledgerdomain.Repository
	LeaseSvc   leasedomain.Service
	Policy     *config.BillingPolicyHolder
	GenID      *snowflake.Node
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	ledgerRepo ledgerdomain.Repository
	leaseSvc   leasedomain.Service
	policy     *config.BillingPolicyHolder
	genID      *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("charge.service"),
		ledgerRepo: p.LedgerRepo,
		leaseSvc:   p.LeaseSvc,
		policy:     p.Policy,
		genID:      p.GenID,
	}
}

func (s *Service) EnsureMonthlyCharge(ctx context.Context, tx *gorm.DB, tenantAccount string, now time.Time) error {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return domain.ErrInvalidTenantAccount
	}
	if tx == nil {
		tx = s.db
	}

	view, err := s.leaseSvc.Resolve(ctx, tx, tenantAccount)
	if err != nil {
		return err
	}
	if view == nil {
		return nil
	}

	now = now.UTC()
	month := now.Format(ledgerdomain.StatementMonthLayout)
	dueDate := monthlyDueDate(view.StartDate, now)

	if err := s.ensureRentCharge(ctx, tx, view, month, dueDate, now); err != nil {
		return err
	}
	return s.ensureLateFee(ctx, tx, view, month, dueDate, now)
}

// monthlyDueDate derives the charge due date from the lease start day,
// clamped to [1,28] so every month has the day.
func monthlyDueDate(startDate, now time.Time) time.Time {
	day := startDate.Day()
	if day < 1 {
		day = 1
	}
	if day > 28 {
		day = 28
	}
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (s *Service) ensureRentCharge(ctx context.Context, tx *gorm.DB, view *leasedomain.LeaseView, month string, dueDate time.Time, now time.Time) error {
	existing, err := s.ledgerRepo.FindMonthRentCharge(ctx, tx, view.TenantAccount, month)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	leaseID := view.LeaseID
	propertyID := view.PropertyID
	due := dueDate
	entry := ledgerdomain.LedgerEntry{
		ID:             s.genID.Generate(),
		TenantAccount:  view.TenantAccount,
		PropertyID:     &propertyID,
		UnitLabel:      view.UnitLabel,
		LeaseID:        &leaseID,
		EntryType:      ledgerdomain.EntryTypeCharge,
		Category:       ledgerdomain.CategoryRent,
		Amount:         view.RentShare,
		Status:         ledgerdomain.EntryStatusOpen,
		DueDate:        &due,
		StatementMonth: month,
		Note:           fmt.Sprintf("Monthly rent for %s", month),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ledgerRepo.Insert(ctx, tx, &entry); err != nil {
		return err
	}
	obsmetrics.Sweeper().IncChargeCreated()
	s.log.Info("charge.rent_created",
		zap.String("tenant_account", view.TenantAccount),
		zap.String("statement_month", month),
		zap.Int64("amount", view.RentShare),
	)
	return nil
}

func (s *Service) ensureLateFee(ctx context.Context, tx *gorm.DB, view *leasedomain.LeaseView, month string, dueDate time.Time, now time.Time) error {
	policy := s.policy.Current()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !today.After(dueDate.AddDate(0, 0, policy.GraceDays)) {
		return nil
	}

	charged, err := s.ledgerRepo.MonthChargedTotal(ctx, tx, view.TenantAccount, month)
	if err != nil {
		return err
	}
	paid, err := s.ledgerRepo.MonthPaidTotal(ctx, tx, view.TenantAccount, month)
	if err != nil {
		return err
	}
	if paid >= charged {
		return nil
	}

	exists, err := s.ledgerRepo.HasMonthLateFee(ctx, tx, view.TenantAccount, month)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	fee := int64(math.Round(float64(view.RentShare) * policy.LateFeePercent))
	if fee < policy.LateFeeMinimum {
		fee = policy.LateFeeMinimum
	}

	leaseID := view.LeaseID
	propertyID := view.PropertyID
	entry := ledgerdomain.LedgerEntry{
		ID:             s.genID.Generate(),
		TenantAccount:  view.TenantAccount,
		PropertyID:     &propertyID,
		UnitLabel:      view.UnitLabel,
		LeaseID:        &leaseID,
		EntryType:      ledgerdomain.EntryTypeLateFee,
		Category:       ledgerdomain.CategoryRentLateFee,
		Amount:         fee,
		Status:         ledgerdomain.EntryStatusOpen,
		DueDate:        &today,
		StatementMonth: month,
		Note:           fmt.Sprintf("Late fee for %s rent", month),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ledgerRepo.Insert(ctx, tx, &entry); err != nil {
		return err
	}
	obsmetrics.Sweeper().IncLateFeeAssessed()
	s.log.Info("charge.late_fee_created",
		zap.String("tenant_account", view.TenantAccount),
		zap.String("statement_month", month),
		zap.Int64("amount", fee),
	)
	return nil
}
