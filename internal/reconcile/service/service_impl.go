package service

import (
	"context"
	"strings"

	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	"github.com/smallbiznis/rentledger/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	LedgerRepo ledgerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	ledgerRepo ledgerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reconcile.service"),
		ledgerRepo: p.LedgerRepo,
	}
}

func (s *Service) Reconcile(ctx context.Context, tx *gorm.DB, tenantAccount string) (domain.Totals, error) {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return domain.Totals{}, domain.ErrInvalidTenantAccount
	}
	if tx == nil {
		tx = s.db
	}

	if err := s.ledgerRepo.ResetAllocations(ctx, tx, tenantAccount); err != nil {
		return domain.Totals{}, err
	}

	credit, err := s.ledgerRepo.PaidCredit(ctx, tx, tenantAccount)
	if err != nil {
		return domain.Totals{}, err
	}

	open, err := s.ledgerRepo.ListOpenCharges(ctx, tx, tenantAccount)
	if err != nil {
		return domain.Totals{}, err
	}

	for _, entry := range open {
		if credit < entry.Amount {
			break
		}
		if err := s.ledgerRepo.MarkPaid(ctx, tx, entry.ID); err != nil {
			return domain.Totals{}, err
		}
		credit -= entry.Amount
	}

	sums, err := s.ledgerRepo.SumByTenant(ctx, tx, tenantAccount)
	if err != nil {
		return domain.Totals{}, err
	}

	balance := sums.Charges - sums.Paid
	if balance < 0 {
		balance = 0
	}
	return domain.Totals{
		Charges:       sums.Charges,
		Paid:          sums.Paid,
		Submitted:     sums.Submitted,
		Failed:        sums.Failed,
		Balance:       balance,
		CreditBalance: credit,
	}, nil
}
