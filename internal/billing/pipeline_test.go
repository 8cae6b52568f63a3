package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	chargeservice "github.com/smallbiznis/rentledger/internal/charge/service"
	"github.com/smallbiznis/rentledger/internal/config"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	leaserepository "github.com/smallbiznis/rentledger/internal/lease/repository"
	leaseservice "github.com/smallbiznis/rentledger/internal/lease/service"
	ledgerrepository "github.com/smallbiznis/rentledger/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/rentledger/internal/ledger/service"
	reconcileservice "github.com/smallbiznis/rentledger/internal/reconcile/service"
	"github.com/smallbiznis/rentledger/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pipelineFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	leaseSvc leasedomain.Service
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()

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

	return &pipelineFixture{
		db:       db,
		node:     node,
		leaseSvc: leaseSvc,
		pipeline: NewPipeline(Params{
			DB:           db,
			Log:          log,
			LedgerSvc:    ledgerSvc,
			ChargeSvc:    chargeSvc,
			ReconcileSvc: reconcileSvc,
		}),
	}
}

func (f *pipelineFixture) insertPaidPayment(t *testing.T, account string, amount int64, at time.Time) {
	t.Helper()
	id := f.node.Generate()
	err := f.db.Exec(
		`INSERT INTO payments (id, payer_account, payer_role, payment_type, provider, reference, amount, status, created_at, updated_at)
		 VALUES (?, ?, 'tenant', 'rent', 'stripe', ?, ?, 'paid', ?, ?)`,
		id, account, id.String(), amount, at, at,
	).Error
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}
}

func TestPipelineSettlesMonthEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	if _, err := f.leaseSvc.AssignLease(ctx, leasedomain.AssignLeaseRequest{
		TenantAccount: "alice",
		OwnerAccount:  "landlord",
		UnitRent:      1000,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign lease: %v", err)
	}

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.insertPaidPayment(t, "alice", 1000, now)

	totals, err := f.pipeline.Run(ctx, "alice", now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if totals.Charges != 1000 || totals.Paid != 1000 || totals.Balance != 0 {
		t.Fatalf("expected a settled month, got %+v", totals)
	}

	// A second run with no new rows must not change anything.
	again, err := f.pipeline.Run(ctx, "alice", now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again != totals {
		t.Fatalf("expected identical totals, got %+v then %+v", totals, again)
	}
}

func TestPipelineReportsOutstandingBalance(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	if _, err := f.leaseSvc.AssignLease(ctx, leasedomain.AssignLeaseRequest{
		TenantAccount: "alice",
		OwnerAccount:  "landlord",
		UnitRent:      1500,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign lease: %v", err)
	}

	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	totals, err := f.pipeline.Run(ctx, "alice", now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if totals.Charges != 1500 || totals.Balance != 1500 {
		t.Fatalf("expected an open charge of 1500, got %+v", totals)
	}
}

func TestAccountLocksSerializePerAccount(t *testing.T) {
	locks := newAccountLocks()

	var mu sync.Mutex
	var order []int
	unlock := locks.Lock("alice")

	done := make(chan struct{})
	go func() {
		u := locks.Lock("alice")
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		u()
		close(done)
	}()

	// The other account is not blocked by alice's lock.
	u := locks.Lock("bob")
	u()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	unlock()
	<-done

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected holder to finish before waiter, got %v", order)
	}
}
