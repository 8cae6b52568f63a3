package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/autopay/domain"
	"github.com/smallbiznis/rentledger/internal/billing"
	chargedomain "github.com/smallbiznis/rentledger/internal/charge/domain"
	"github.com/smallbiznis/rentledger/internal/clock"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	notificationdomain "github.com/smallbiznis/rentledger/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
	"github.com/smallbiznis/rentledger/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	LeaseSvc   leasedomain.Service
	ChargeSvc  chargedomain.Service
	PaymentSvc paymentdomain.Service
	NotifySvc  notificationdomain.Service
	LedgerRepo ledgerdomain.Repository
	Pipeline   *billing.Pipeline
	Email      email.Provider
	Clock      clock.Clock
	GenID      *snowflake.Node
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	leaseSvc   leasedomain.Service
	chargeSvc  chargedomain.Service
	paymentSvc paymentdomain.Service
	notifySvc  notificationdomain.Service
	ledgerRepo ledgerdomain.Repository
	pipeline   *billing.Pipeline
	email      email.Provider
	clock      clock.Clock
	genID      *snowflake.Node
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("autopay.service"),
		repo:       p.Repo,
		leaseSvc:   p.LeaseSvc,
		chargeSvc:  p.ChargeSvc,
		paymentSvc: p.PaymentSvc,
		notifySvc:  p.NotifySvc,
		ledgerRepo: p.LedgerRepo,
		pipeline:   p.Pipeline,
		email:      p.Email,
		clock:      p.Clock,
		genID:      p.GenID,
	}
}

func (s *service) Get(ctx context.Context, tenantAccount string) (*domain.Setting, error) {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return nil, domain.ErrInvalidTenantAccount
	}
	return s.repo.FindByTenant(ctx, s.db, tenantAccount)
}

func (s *service) Put(ctx context.Context, req domain.UpdateRequest) (*domain.Setting, error) {
	req.TenantAccount = strings.TrimSpace(req.TenantAccount)
	if req.TenantAccount == "" {
		return nil, domain.ErrInvalidTenantAccount
	}
	if req.PaymentDay < 1 || req.PaymentDay > 28 {
		return nil, domain.ErrInvalidPaymentDay
	}
	if req.NotifyDaysBefore < 0 || req.NotifyDaysBefore > 14 {
		return nil, domain.ErrInvalidNotifyDays
	}

	now := s.clock.Now()
	existing, err := s.repo.FindByTenant(ctx, s.db, req.TenantAccount)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		setting := &domain.Setting{
			ID:               s.genID.Generate(),
			TenantAccount:    req.TenantAccount,
			PaymentMethodID:  req.PaymentMethodID,
			IsEnabled:        req.IsEnabled,
			PaymentDay:       req.PaymentDay,
			NotifyDaysBefore: req.NotifyDaysBefore,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.Insert(ctx, s.db, setting); err != nil {
			return nil, err
		}
		return setting, nil
	}

	existing.PaymentMethodID = req.PaymentMethodID
	existing.IsEnabled = req.IsEnabled
	existing.PaymentDay = req.PaymentDay
	existing.NotifyDaysBefore = req.NotifyDaysBefore
	existing.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// nextPaymentDate is the first occurrence of the configured payment day on or
// after today. Payment days are capped at 28 so every month qualifies.
func nextPaymentDate(now time.Time, paymentDay int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), paymentDay, 0, 0, 0, 0, now.Location())
	if candidate.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}

func (s *service) SendReminders(ctx context.Context, now time.Time) (int, error) {
	settings, err := s.repo.ListEnabled(ctx, s.db)
	if err != nil {
		return 0, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sent := 0
	var errs error
	for _, setting := range settings {
		view, err := s.leaseSvc.Resolve(ctx, nil, setting.TenantAccount)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("reminder %s: %w", setting.TenantAccount, err))
			continue
		}
		if view == nil || view.RentShare <= 0 {
			continue
		}

		due := nextPaymentDate(now, setting.PaymentDay)
		daysUntilDue := int(due.Sub(today).Hours() / 24)
		if daysUntilDue != setting.NotifyDaysBefore {
			continue
		}

		text := fmt.Sprintf("Upcoming rent payment of %d scheduled for %s", view.RentShare, due.Format("2006-01-02"))
		already, err := s.notifySvc.SentToday(ctx, setting.TenantAccount, text, now)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("reminder %s: %w", setting.TenantAccount, err))
			continue
		}
		if already {
			continue
		}

		if err := s.notifySvc.Notify(ctx, setting.TenantAccount, text, "/billing/rent", notificationdomain.CategoryAutopayReminder); err != nil {
			errs = errors.Join(errs, fmt.Errorf("reminder %s: %w", setting.TenantAccount, err))
			continue
		}
		if err := s.email.Send(ctx, []string{setting.TenantAccount}, "Upcoming rent payment", text); err != nil {
			s.log.Warn("autopay.reminder_email_failed",
				zap.String("tenant_account", setting.TenantAccount),
				zap.Error(err),
			)
		}
		obsmetrics.Sweeper().IncReminderSent()
		sent++
	}
	return sent, errs
}

func (s *service) RunAutopay(ctx context.Context, now time.Time) error {
	settings, err := s.repo.ListEnabled(ctx, s.db)
	if err != nil {
		return err
	}

	var errs error
	for _, setting := range settings {
		if err := s.runOne(ctx, setting, now); err != nil {
			s.log.Error("autopay.run_failed",
				zap.String("tenant_account", setting.TenantAccount),
				zap.Error(err),
			)
			errs = errors.Join(errs, fmt.Errorf("autopay %s: %w", setting.TenantAccount, err))
		}
	}
	return errs
}

func (s *service) runOne(ctx context.Context, setting domain.Setting, now time.Time) error {
	if now.Day() < setting.PaymentDay {
		return nil
	}

	view, err := s.leaseSvc.Resolve(ctx, nil, setting.TenantAccount)
	if err != nil {
		return err
	}
	if view == nil || view.RentShare <= 0 {
		return nil
	}

	if err := s.chargeSvc.EnsureMonthlyCharge(ctx, nil, setting.TenantAccount, now); err != nil {
		return err
	}

	existing, err := s.paymentSvc.FindAutopayForMonth(ctx, setting.TenantAccount, now)
	if err != nil {
		return err
	}
	if existing != nil {
		obsmetrics.Sweeper().IncSweepSkipped()
		return nil
	}

	method, err := s.paymentSvc.ResolveMethod(ctx, setting.TenantAccount, setting.PaymentMethodID)
	if err != nil {
		return err
	}
	if method == nil {
		text := "Autopay is enabled but no payment method is on file, add a payment method to keep autopay running"
		if err := s.notifySvc.Notify(ctx, setting.TenantAccount, text, "/billing/payment-methods", notificationdomain.CategoryAutopayResult); err != nil {
			s.log.Warn("autopay.notify_failed", zap.String("tenant_account", setting.TenantAccount), zap.Error(err))
		}
		return nil
	}

	month := now.Format(ledgerdomain.StatementMonthLayout)
	charged, err := s.ledgerRepo.MonthChargedTotal(ctx, s.db, setting.TenantAccount, month)
	if err != nil {
		return err
	}
	paid, err := s.ledgerRepo.MonthPaidTotal(ctx, s.db, setting.TenantAccount, month)
	if err != nil {
		return err
	}
	amount := charged - paid
	if amount <= 0 {
		obsmetrics.Sweeper().IncSweepSkipped()
		return nil
	}

	payment, err := s.paymentSvc.RecordAutopayPayment(ctx, setting.TenantAccount, method.Provider, amount, now)
	if err != nil {
		return err
	}
	if _, err := s.pipeline.Run(ctx, setting.TenantAccount, now); err != nil {
		return err
	}
	obsmetrics.Sweeper().IncAutopayExecuted()
	s.log.Info("autopay.payment_executed",
		zap.String("tenant_account", setting.TenantAccount),
		zap.Int64("amount", amount),
		zap.String("provider", payment.Provider),
	)

	tenantText := fmt.Sprintf("Rent payment of %d was processed automatically", amount)
	if err := s.notifySvc.Notify(ctx, setting.TenantAccount, tenantText, "/billing/rent", notificationdomain.CategoryAutopayResult); err != nil {
		s.log.Warn("autopay.notify_failed", zap.String("tenant_account", setting.TenantAccount), zap.Error(err))
	}
	ownerText := fmt.Sprintf("Autopay rent payment of %d received from %s", amount, setting.TenantAccount)
	if err := s.notifySvc.Notify(ctx, view.OwnerAccount, ownerText, "/billing/rent", notificationdomain.CategoryAutopayResult); err != nil {
		s.log.Warn("autopay.notify_failed", zap.String("owner_account", view.OwnerAccount), zap.Error(err))
	}
	return nil
}
