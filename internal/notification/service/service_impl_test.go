package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/notification/domain"
	"github.com/smallbiznis/rentledger/internal/notification/repository"
	"github.com/smallbiznis/rentledger/internal/testutil"
	"go.uber.org/zap"
)

func newNotificationService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	fake := clock.NewFakeClock(time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    testutil.OpenDB(t),
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Clock: fake,
		GenID: testutil.Node(t),
	})
	return svc, fake
}

func TestNotifyValidation(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	if err := svc.Notify(ctx, " ", "hello", "", domain.CategoryBilling); err != domain.ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
	if err := svc.Notify(ctx, "alice", "  ", "", domain.CategoryBilling); err != domain.ErrInvalidText {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
}

func TestSentTodayMatchesSameDayOnly(t *testing.T) {
	svc, fake := newNotificationService(t)
	ctx := context.Background()

	text := "Upcoming rent payment of 1000 scheduled for 2026-03-10"
	if err := svc.Notify(ctx, "alice", text, "/billing/rent", domain.CategoryAutopayReminder); err != nil {
		t.Fatalf("notify: %v", err)
	}

	sent, err := svc.SentToday(ctx, "alice", text, fake.Now())
	if err != nil {
		t.Fatalf("sent today: %v", err)
	}
	if !sent {
		t.Fatal("expected the reminder to count as sent today")
	}

	// Different text or a different day does not match.
	if sent, _ := svc.SentToday(ctx, "alice", "other text", fake.Now()); sent {
		t.Fatal("expected no match for different text")
	}
	if sent, _ := svc.SentToday(ctx, "alice", text, fake.Now().AddDate(0, 0, 1)); sent {
		t.Fatal("expected no match on the next day")
	}
}

func TestListByAccountHonorsLimit(t *testing.T) {
	svc, _ := newNotificationService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := svc.Notify(ctx, "alice", "note", "", domain.CategoryBilling); err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}

	ns, err := svc.ListByAccount(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(ns))
	}
}
