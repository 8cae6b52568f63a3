package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rentledger/internal/billing"
	chargeservice "github.com/smallbiznis/rentledger/internal/charge/service"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	leaserepository "github.com/smallbiznis/rentledger/internal/lease/repository"
	leaseservice "github.com/smallbiznis/rentledger/internal/lease/service"
	ledgerrepository "github.com/smallbiznis/rentledger/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/rentledger/internal/ledger/service"
	"github.com/smallbiznis/rentledger/internal/payment/domain"
	"github.com/smallbiznis/rentledger/internal/payment/repository"
	reconcileservice "github.com/smallbiznis/rentledger/internal/reconcile/service"
	"github.com/smallbiznis/rentledger/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentFixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	svc   domain.Service
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

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

	return &paymentFixture{
		db:    db,
		clock: fake,
		svc: New(Params{
			DB:       db,
			Log:      log,
			Repo:     repository.Provide(),
			Pipeline: pipeline,
			Policy:   policy,
			Clock:    fake,
			GenID:    node,
		}),
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.SubmitRequest
		want error
	}{
		{"empty account", domain.SubmitRequest{PaymentType: domain.PaymentTypeRent, Provider: "stripe", Amount: 10}, domain.ErrInvalidPayerAccount},
		{"bad role", domain.SubmitRequest{PayerAccount: "alice", PayerRole: "owner", PaymentType: domain.PaymentTypeRent, Provider: "stripe", Amount: 10}, domain.ErrInvalidPayerRole},
		{"bad type", domain.SubmitRequest{PayerAccount: "alice", PaymentType: "loan", Provider: "stripe", Amount: 10}, domain.ErrInvalidPaymentType},
		{"empty provider", domain.SubmitRequest{PayerAccount: "alice", PaymentType: domain.PaymentTypeRent, Amount: 10}, domain.ErrInvalidProvider},
		{"zero amount", domain.SubmitRequest{PayerAccount: "alice", PaymentType: domain.PaymentTypeRent, Provider: "stripe"}, domain.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Submit(ctx, tc.req); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmitMirrorsIntoLedger(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	p, err := f.svc.Submit(ctx, domain.SubmitRequest{
		PayerAccount: "alice",
		PaymentType:  domain.PaymentTypeRent,
		Provider:     "stripe",
		Amount:       750,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != domain.PaymentStatusSubmitted {
		t.Fatalf("expected submitted, got %s", p.Status)
	}
	if p.Reference == "" {
		t.Fatal("expected a generated reference")
	}

	var count int64
	err = f.db.Raw(
		`SELECT COUNT(*) FROM ledger_entries WHERE source_payment_id = ? AND amount = -750 AND status = 'submitted'`,
		p.ID,
	).Scan(&count).Error
	if err != nil {
		t.Fatalf("query ledger: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 mirrored ledger entry, got %d", count)
	}
}

func TestSetStatusStateMachine(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	p, err := f.svc.Submit(ctx, domain.SubmitRequest{
		PayerAccount: "alice",
		PaymentType:  domain.PaymentTypeRent,
		Provider:     "stripe",
		Amount:       500,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.svc.SetStatus(ctx, p.ID, "settled"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	updated, err := f.svc.SetStatus(ctx, p.ID, domain.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if updated.Status != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", updated.Status)
	}

	// Settled payments are immutable.
	if _, err := f.svc.SetStatus(ctx, p.ID, domain.PaymentStatusFailed); err != domain.ErrStatusNotMutable {
		t.Fatalf("expected ErrStatusNotMutable, got %v", err)
	}

	if _, err := f.svc.SetStatus(ctx, testutil.Node(t).Generate(), domain.PaymentStatusPaid); err != domain.ErrPaymentNotFound {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestResolveMethodPrecedence(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	none, err := f.svc.ResolveMethod(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("resolve with no methods: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil with no methods, got %+v", none)
	}

	first, err := f.svc.AddMethod(ctx, domain.AddMethodRequest{
		TenantAccount: "alice",
		Provider:      "stripe",
		Label:         "Visa",
		Last4:         "4242",
	})
	if err != nil {
		t.Fatalf("add method: %v", err)
	}
	second, err := f.svc.AddMethod(ctx, domain.AddMethodRequest{
		TenantAccount: "alice",
		Provider:      "ach",
		Label:         "Checking",
		Last4:         "9001",
		IsDefault:     true,
	})
	if err != nil {
		t.Fatalf("add default method: %v", err)
	}

	got, err := f.svc.ResolveMethod(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("expected default method %s, got %+v", second.ID, got)
	}

	got, err = f.svc.ResolveMethod(ctx, "alice", &first.ID)
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected explicit method %s, got %+v", first.ID, got)
	}

	// A removed explicit method falls back to the default.
	if err := f.svc.RemoveMethod(ctx, "alice", first.ID); err != nil {
		t.Fatalf("remove method: %v", err)
	}
	got, err = f.svc.ResolveMethod(ctx, "alice", &first.ID)
	if err != nil {
		t.Fatalf("resolve after removal: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("expected fallback to default, got %+v", got)
	}
}

func TestAddDefaultMethodClearsPreviousDefault(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddMethod(ctx, domain.AddMethodRequest{
		TenantAccount: "alice",
		Provider:      "stripe",
		IsDefault:     true,
	})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := f.svc.AddMethod(ctx, domain.AddMethodRequest{
		TenantAccount: "alice",
		Provider:      "ach",
		IsDefault:     true,
	}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	methods, err := f.svc.ListMethods(ctx, "alice")
	if err != nil {
		t.Fatalf("list methods: %v", err)
	}
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			if m.ID == first.ID {
				t.Fatal("expected the first method to lose its default flag")
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default method, got %d", defaults)
	}
}

func TestFindAutopayForMonthMatchesOnlyAutopayPayments(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	// A manual rent payment must not count as the month's autopay run.
	if _, err := f.svc.Submit(ctx, domain.SubmitRequest{
		PayerAccount: "alice",
		PaymentType:  domain.PaymentTypeRent,
		Provider:     "stripe",
		Amount:       900,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := f.svc.FindAutopayForMonth(ctx, "alice", now)
	if err != nil {
		t.Fatalf("find autopay: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no autopay payment, got %+v", got)
	}

	recorded, err := f.svc.RecordAutopayPayment(ctx, "alice", "stripe", 900, now)
	if err != nil {
		t.Fatalf("record autopay: %v", err)
	}
	if recorded.Provider != "autopay:stripe" {
		t.Fatalf("expected autopay provider prefix, got %q", recorded.Provider)
	}
	if recorded.Status != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", recorded.Status)
	}

	got, err = f.svc.FindAutopayForMonth(ctx, "alice", now)
	if err != nil {
		t.Fatalf("find autopay: %v", err)
	}
	if got == nil || got.ID != recorded.ID {
		t.Fatalf("expected the recorded autopay payment, got %+v", got)
	}

	// The next month starts clean.
	if got, _ := f.svc.FindAutopayForMonth(ctx, "alice", now.AddDate(0, 1, 0)); got != nil {
		t.Fatalf("expected no autopay payment next month, got %+v", got)
	}
}
