package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/rentledger/internal/billing"
	"github.com/smallbiznis/rentledger/internal/clock"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	"github.com/smallbiznis/rentledger/internal/rentdue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	LeaseSvc   leasedomain.Service
	LedgerRepo ledgerdomain.Repository
	Pipeline   *billing.Pipeline
	Clock      clock.Clock
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	leaseSvc   leasedomain.Service
	ledgerRepo ledgerdomain.Repository
	pipeline   *billing.Pipeline
	clock      clock.Clock
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("rentdue.service"),
		leaseSvc:   p.LeaseSvc,
		ledgerRepo: p.LedgerRepo,
		pipeline:   p.Pipeline,
		clock:      p.Clock,
	}
}

func (s *service) RentDue(ctx context.Context, tenantAccount string) (*domain.Summary, error) {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return nil, domain.ErrInvalidTenantAccount
	}

	view, err := s.leaseSvc.Resolve(ctx, nil, tenantAccount)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, nil
	}

	now := s.clock.Now()
	totals, err := s.pipeline.Run(ctx, tenantAccount, now)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Amount:       totals.Balance,
		Status:       domain.StatusOpen,
		SharePercent: view.SharePercent,
	}

	month := now.UTC().Format(ledgerdomain.StatementMonthLayout)
	charge, err := s.ledgerRepo.FindMonthRentCharge(ctx, s.db, tenantAccount, month)
	if err != nil {
		return nil, err
	}
	if charge != nil && charge.DueDate != nil {
		due := *charge.DueDate
		summary.DueDate = &due
	}

	switch {
	case totals.Balance == 0:
		summary.Status = domain.StatusPaid
	case summary.DueDate != nil && now.UTC().After(*summary.DueDate):
		summary.Status = domain.StatusOverdue
	}
	return summary, nil
}
