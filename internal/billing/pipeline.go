package billing

import (
	"context"
	"strings"
	"time"

	chargedomain "github.com/smallbiznis/rentledger/internal/charge/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	reconciledomain "github.com/smallbiznis/rentledger/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	LedgerSvc    ledgerdomain.Service
	ChargeSvc    chargedomain.Service
	ReconcileSvc reconciledomain.Service
}

// Pipeline runs the sync→charge→reconcile sequence for one tenant account in
// a single transaction under a per-account lock. Every payment-affecting
// caller goes through here; nothing else writes ledger rows.
type Pipeline struct {
	db           *gorm.DB
	log          *zap.Logger
	ledgerSvc    ledgerdomain.Service
	chargeSvc    chargedomain.Service
	reconcileSvc reconciledomain.Service
	locks        *accountLocks
}

func NewPipeline(p Params) *Pipeline {
	return &Pipeline{
		db:           p.DB,
		log:          p.Log.Named("billing.pipeline"),
		ledgerSvc:    p.LedgerSvc,
		chargeSvc:    p.ChargeSvc,
		reconcileSvc: p.ReconcileSvc,
		locks:        newAccountLocks(),
	}
}

func (p *Pipeline) Run(ctx context.Context, tenantAccount string, now time.Time) (reconciledomain.Totals, error) {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return reconciledomain.Totals{}, reconciledomain.ErrInvalidTenantAccount
	}

	unlock := p.locks.Lock(tenantAccount)
	defer unlock()

	var totals reconciledomain.Totals
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.ledgerSvc.SyncPayments(ctx, tx, ledgerdomain.SyncScope{TenantAccount: tenantAccount}); err != nil {
			return err
		}
		if err := p.chargeSvc.EnsureMonthlyCharge(ctx, tx, tenantAccount, now); err != nil {
			return err
		}
		t, err := p.reconcileSvc.Reconcile(ctx, tx, tenantAccount)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	if err != nil {
		return reconciledomain.Totals{}, err
	}
	return totals, nil
}

var Module = fx.Module("billing.pipeline",
	fx.Provide(NewPipeline),
)
