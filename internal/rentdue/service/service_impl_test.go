package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/billing"
	chargeservice "github.com/smallbiznis/rentledger/internal/charge/service"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	leaserepository "github.com/smallbiznis/rentledger/internal/lease/repository"
	leaseservice "github.com/smallbiznis/rentledger/internal/lease/service"
	ledgerrepository "github.com/smallbiznis/rentledger/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/rentledger/internal/ledger/service"
	"github.com/smallbiznis/rentledger/internal/rentdue/domain"
	reconcileservice "github.com/smallbiznis/rentledger/internal/reconcile/service"
	"github.com/smallbiznis/rentledger/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type rentDueFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	leaseSvc leasedomain.Service
	svc      domain.Service
}

func newRentDueFixture(t *testing.T) *rentDueFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	leaseSvc := leaseservice.New(leaseservice.Params{
		DB:    db,
		Log:   log,
		Repo:  leaserepository.Provide(),
		GenID: node,
	})
	ledgerRepo := ledgerrepository.Provide()
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:       db,
		Log:      log,
		Repo:     ledgerRepo,
		LeaseSvc: leaseSvc,
		GenID:    node,
	})
	policy := &config.BillingPolicyHolder{}
	policy.Store(config.DefaultBillingPolicy())
	chargeSvc := chargeservice.New(chargeservice.Params{
		DB:         db,
		Log:        log,
		LedgerRepo: ledgerRepo,
		LeaseSvc:   leaseSvc,
		Policy:     policy,
		GenID:      node,
	})
	reconcileSvc := reconcileservice.New(reconcileservice.Params{
		DB:         db,
		Log:        log,
		LedgerRepo: ledgerRepo,
	})
	pipeline := billing.NewPipeline(billing.Params{
		DB:           db,
		Log:          log,
		LedgerSvc:    ledgerSvc,
		ChargeSvc:    chargeSvc,
		ReconcileSvc: reconcileSvc,
	})

	return &rentDueFixture{
		db:       db,
		node:     node,
		clock:    fake,
		leaseSvc: leaseSvc,
		svc: New(Params{
			DB:         db,
			Log:        log,
			LeaseSvc:   leaseSvc,
			LedgerRepo: ledgerRepo,
			Pipeline:   pipeline,
			Clock:      fake,
		}),
	}
}

func (f *rentDueFixture) assignLease(t *testing.T, rent int64) {
	t.Helper()
	if _, err := f.leaseSvc.AssignLease(context.Background(), leasedomain.AssignLeaseRequest{
		TenantAccount: "alice",
		OwnerAccount:  "landlord",
		UnitRent:      rent,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign lease: %v", err)
	}
}

func (f *rentDueFixture) insertPaidPayment(t *testing.T, amount int64, at time.Time) {
	t.Helper()
	id := f.node.Generate()
	err := f.db.Exec(
		`INSERT INTO payments (id, payer_account, payer_role, payment_type, provider, reference, amount, status, created_at, updated_at)
		 VALUES (?, 'alice', 'tenant', 'rent', 'stripe', ?, ?, 'paid', ?, ?)`,
		id, id.String(), amount, at, at,
	).Error
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}
}

func TestRentDueNoLeaseReturnsNil(t *testing.T) {
	f := newRentDueFixture(t)

	summary, err := f.svc.RentDue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("rent due: %v", err)
	}
	if summary != nil {
		t.Fatalf("expected nil summary, got %+v", summary)
	}
}

func TestRentDueOpenThenOverdueThenPaid(t *testing.T) {
	f := newRentDueFixture(t)
	ctx := context.Background()
	f.assignLease(t, 1000)

	// March 2nd: charge due March 1st was just created, balance outstanding but
	// the grace window classification is based on the due date alone.
	summary, err := f.svc.RentDue(ctx, "alice")
	if err != nil {
		t.Fatalf("rent due: %v", err)
	}
	if summary == nil {
		t.Fatal("expected a summary")
	}
	if summary.Amount != 1000 {
		t.Fatalf("expected amount 1000, got %d", summary.Amount)
	}
	if summary.Status != domain.StatusOverdue {
		t.Fatalf("expected overdue past the due date, got %s", summary.Status)
	}
	if summary.DueDate == nil || summary.DueDate.Day() != 1 {
		t.Fatalf("expected a due date on the 1st, got %v", summary.DueDate)
	}
	if summary.SharePercent != 100 {
		t.Fatalf("expected share percent 100, got %d", summary.SharePercent)
	}

	f.insertPaidPayment(t, 1000, f.clock.Now())
	summary, err = f.svc.RentDue(ctx, "alice")
	if err != nil {
		t.Fatalf("rent due after payment: %v", err)
	}
	if summary.Amount != 0 || summary.Status != domain.StatusPaid {
		t.Fatalf("expected a paid summary, got %+v", summary)
	}
}

func TestRentDueRejectsEmptyAccount(t *testing.T) {
	f := newRentDueFixture(t)

	if _, err := f.svc.RentDue(context.Background(), " "); err != domain.ErrInvalidTenantAccount {
		t.Fatalf("expected ErrInvalidTenantAccount, got %v", err)
	}
}
