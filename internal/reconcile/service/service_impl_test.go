package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	ledgerrepository "github.com/smallbiznis/rentledger/internal/ledger/repository"
	"github.com/smallbiznis/rentledger/internal/reconcile/domain"
	"github.com/smallbiznis/rentledger/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reconcileFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	ledgerRepo ledgerdomain.Repository
	svc        domain.Service
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	ledgerRepo := ledgerrepository.Provide()
	return &reconcileFixture{
		db:         db,
		node:       testutil.Node(t),
		ledgerRepo: ledgerRepo,
		svc: New(Params{
			DB:         db,
			Log:        zap.NewNop(),
			LedgerRepo: ledgerRepo,
		}),
	}
}

func (f *reconcileFixture) insertCharge(t *testing.T, account string, amount int64, dueDate time.Time) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	err := f.db.Exec(
		`INSERT INTO ledger_entries (id, tenant_account, entry_type, category, amount, status, due_date, statement_month, created_at, updated_at)
		 VALUES (?, ?, 'charge', 'rent', ?, 'open', ?, ?, ?, ?)`,
		id, account, amount, dueDate, dueDate.Format(ledgerdomain.StatementMonthLayout), dueDate, dueDate,
	).Error
	if err != nil {
		t.Fatalf("insert charge: %v", err)
	}
	return id
}

func (f *reconcileFixture) insertPaidPayment(t *testing.T, account string, amount int64, at time.Time) {
	t.Helper()
	err := f.db.Exec(
		`INSERT INTO ledger_entries (id, tenant_account, entry_type, category, amount, status, statement_month, created_at, updated_at)
		 VALUES (?, ?, 'payment', 'rent_payment', ?, 'paid', ?, ?, ?)`,
		f.node.Generate(), account, -amount, at.Format(ledgerdomain.StatementMonthLayout), at, at,
	).Error
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}
}

func (f *reconcileFixture) insertAdjustment(t *testing.T, account string, amount int64, at time.Time) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	err := f.db.Exec(
		`INSERT INTO ledger_entries (id, tenant_account, entry_type, category, amount, status, statement_month, created_at, updated_at)
		 VALUES (?, ?, 'adjustment', 'adjustment', ?, 'open', ?, ?, ?)`,
		id, account, amount, at.Format(ledgerdomain.StatementMonthLayout), at, at,
	).Error
	if err != nil {
		t.Fatalf("insert adjustment: %v", err)
	}
	return id
}

func (f *reconcileFixture) entryStatus(t *testing.T, id snowflake.ID) ledgerdomain.EntryStatus {
	t.Helper()
	entry, err := f.ledgerRepo.FindByID(context.Background(), f.db, id)
	if err != nil || entry == nil {
		t.Fatalf("find entry %s: %v", id, err)
	}
	return entry.Status
}

func TestReconcileSettlesFullyCoveredCharge(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	chargeID := f.insertCharge(t, "alice", 1000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 1000, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if totals.Charges != 1000 || totals.Paid != 1000 {
		t.Fatalf("expected charges 1000 paid 1000, got %+v", totals)
	}
	if totals.Balance != 0 {
		t.Fatalf("expected balance 0, got %d", totals.Balance)
	}
	if totals.CreditBalance != 0 {
		t.Fatalf("expected no leftover credit, got %d", totals.CreditBalance)
	}
	if status := f.entryStatus(t, chargeID); status != ledgerdomain.EntryStatusPaid {
		t.Fatalf("expected charge marked paid, got %s", status)
	}
}

func TestReconcileNeverSplitsACharge(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	// A partial payment leaves the charge open; the credit is carried, not
	// applied fractionally.
	chargeID := f.insertCharge(t, "alice", 1000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 400, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status := f.entryStatus(t, chargeID); status != ledgerdomain.EntryStatusOpen {
		t.Fatalf("expected charge to stay open, got %s", status)
	}
	if totals.Balance != 600 {
		t.Fatalf("expected balance 600, got %d", totals.Balance)
	}
	if totals.CreditBalance != 400 {
		t.Fatalf("expected carried credit 400, got %d", totals.CreditBalance)
	}
}

func TestReconcileAppliesCreditOldestFirst(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	oldID := f.insertCharge(t, "alice", 500, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	newID := f.insertCharge(t, "alice", 800, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 600, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status := f.entryStatus(t, oldID); status != ledgerdomain.EntryStatusPaid {
		t.Fatalf("expected oldest charge paid, got %s", status)
	}
	if status := f.entryStatus(t, newID); status != ledgerdomain.EntryStatusOpen {
		t.Fatalf("expected newer charge open, got %s", status)
	}
	if totals.Balance != 700 {
		t.Fatalf("expected balance 700, got %d", totals.Balance)
	}
	if totals.CreditBalance != 100 {
		t.Fatalf("expected leftover credit 100, got %d", totals.CreditBalance)
	}
}

func TestReconcileOrdersAdjustmentsByCreationDate(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	// An adjustment carries no due date; it slots into the allocation order
	// by its creation date, between the two dated charges.
	oldID := f.insertCharge(t, "alice", 500, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	adjID := f.insertAdjustment(t, "alice", 200, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	newID := f.insertCharge(t, "alice", 800, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 700, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status := f.entryStatus(t, oldID); status != ledgerdomain.EntryStatusPaid {
		t.Fatalf("expected oldest charge paid, got %s", status)
	}
	if status := f.entryStatus(t, adjID); status != ledgerdomain.EntryStatusPaid {
		t.Fatalf("expected adjustment paid before the newer charge, got %s", status)
	}
	if status := f.entryStatus(t, newID); status != ledgerdomain.EntryStatusOpen {
		t.Fatalf("expected newest charge open, got %s", status)
	}
	if totals.Balance != 800 || totals.CreditBalance != 0 {
		t.Fatalf("expected balance 800 with no residual credit, got %+v", totals)
	}
}

func TestReconcilePoolsMultiplePaymentsAgainstOneCharge(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	// Two part-payments that each fall short of the charge still settle it
	// together; allocation works from the summed credit, not payment by
	// payment.
	chargeID := f.insertCharge(t, "alice", 2000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 1000, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 1000, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status := f.entryStatus(t, chargeID); status != ledgerdomain.EntryStatusPaid {
		t.Fatalf("expected charge settled by pooled payments, got %s", status)
	}
	if totals.Charges != 2000 || totals.Paid != 2000 {
		t.Fatalf("expected charges 2000 paid 2000, got %+v", totals)
	}
	if totals.Balance != 0 || totals.CreditBalance != 0 {
		t.Fatalf("expected zero balance and no residual credit, got %+v", totals)
	}
}

func TestReconcileIsRepeatable(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	f.insertCharge(t, "alice", 900, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertCharge(t, "alice", 100, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 950, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))

	first, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical totals, got %+v then %+v", first, second)
	}
}

func TestReconcileBalanceNeverNegative(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	f.insertCharge(t, "alice", 300, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.insertPaidPayment(t, "alice", 500, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	totals, err := f.svc.Reconcile(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if totals.Balance != 0 {
		t.Fatalf("expected balance floored at 0, got %d", totals.Balance)
	}
	if totals.CreditBalance != 200 {
		t.Fatalf("expected overpay credit 200, got %d", totals.CreditBalance)
	}
}

func TestReconcileRejectsEmptyAccount(t *testing.T) {
	f := newReconcileFixture(t)

	if _, err := f.svc.Reconcile(context.Background(), nil, "  "); err != domain.ErrInvalidTenantAccount {
		t.Fatalf("expected ErrInvalidTenantAccount, got %v", err)
	}
}
