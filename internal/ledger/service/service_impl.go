package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	"github.com/smallbiznis/rentledger/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	LeaseSvc leasedomain.Service
	GenID    *snowflake.Node
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	leaseSvc leasedomain.Service
	genID    *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ledger.service"),
		repo:     p.Repo,
		leaseSvc: p.LeaseSvc,
		genID:    p.GenID,
	}
}

// paymentRow is the projection of a payments row the sync needs.
type paymentRow struct {
	ID           snowflake.ID
	PayerAccount string
	PaymentType  string
	Provider     string
	Amount       int64
	Status       string
	CreatedAt    time.Time
}

func (s *Service) SyncPayments(ctx context.Context, tx *gorm.DB, scope domain.SyncScope) error {
	if tx == nil {
		tx = s.db
	}

	query := `SELECT id, payer_account, payment_type, provider, amount, status, created_at
	 FROM payments
	 WHERE payer_role = ? AND amount > 0`
	args := []any{"tenant"}
	if scope.TenantAccount != "" {
		query += ` AND payer_account = ?`
		args = append(args, scope.TenantAccount)
	}
	if scope.PaymentID != 0 {
		query += ` AND id = ?`
		args = append(args, scope.PaymentID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var rows []paymentRow
	if err := tx.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return err
	}

	for _, p := range rows {
		if err := s.upsertEntry(ctx, tx, p); err != nil {
			return fmt.Errorf("sync payment %s: %w", p.ID.String(), err)
		}
	}
	return nil
}

func (s *Service) upsertEntry(ctx context.Context, tx *gorm.DB, p paymentRow) error {
	status := mirrorStatus(p.Status)
	note := "Payment via " + p.Provider

	existing, err := s.repo.FindBySourcePayment(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Amount == -p.Amount && existing.Status == status && existing.Note == note {
			return nil
		}
		return s.repo.RefreshFromPayment(ctx, tx, existing.ID, -p.Amount, status, note)
	}

	category := domain.CategoryBillPayment
	if p.PaymentType == "rent" {
		category = domain.CategoryRentPayment
	}

	entry := domain.LedgerEntry{
		ID:             s.genID.Generate(),
		TenantAccount:  p.PayerAccount,
		EntryType:      domain.EntryTypePayment,
		Category:       category,
		Amount:         -p.Amount,
		Status:         status,
		StatementMonth: p.CreatedAt.UTC().Format(domain.StatementMonthLayout),
		Note:           note,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	entry.SourcePaymentID = &p.ID

	// Lease attribution is snapshotted once, at first projection. Later lease
	// changes must not rewrite historical entries.
	view, err := s.leaseSvc.Resolve(ctx, tx, p.PayerAccount)
	if err != nil {
		return err
	}
	if view != nil {
		leaseID := view.LeaseID
		propertyID := view.PropertyID
		entry.LeaseID = &leaseID
		entry.PropertyID = &propertyID
		entry.UnitLabel = view.UnitLabel
	}

	return s.repo.Insert(ctx, tx, &entry)
}

func mirrorStatus(paymentStatus string) domain.EntryStatus {
	switch paymentStatus {
	case "paid":
		return domain.EntryStatusPaid
	case "failed":
		return domain.EntryStatusFailed
	default:
		return domain.EntryStatusSubmitted
	}
}

func (s *Service) VoidEntry(ctx context.Context, id snowflake.ID, note string) error {
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrEntryNotFound
	}
	if entry.Status != domain.EntryStatusOpen {
		return domain.ErrEntryNotVoidable
	}
	if err := s.repo.SetVoid(ctx, s.db, id, note); err != nil {
		return err
	}
	s.log.Info("ledger.entry_voided",
		zap.String("entry_id", id.String()),
		zap.String("tenant_account", entry.TenantAccount),
	)
	return nil
}

func (s *Service) AddAdjustment(ctx context.Context, req domain.AddAdjustmentRequest) (domain.LedgerEntry, error) {
	req.TenantAccount = strings.TrimSpace(req.TenantAccount)
	if req.TenantAccount == "" {
		return domain.LedgerEntry{}, domain.ErrInvalidTenantAccount
	}
	if req.Amount <= 0 {
		return domain.LedgerEntry{}, domain.ErrInvalidAmount
	}
	if _, err := time.Parse(domain.StatementMonthLayout, req.StatementMonth); err != nil {
		return domain.LedgerEntry{}, domain.ErrInvalidMonth
	}

	now := time.Now().UTC()
	entry := domain.LedgerEntry{
		ID:             s.genID.Generate(),
		TenantAccount:  req.TenantAccount,
		EntryType:      domain.EntryTypeAdjustment,
		Category:       domain.CategoryAdjustment,
		Amount:         req.Amount,
		Status:         domain.EntryStatusOpen,
		StatementMonth: req.StatementMonth,
		Note:           req.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if view, err := s.leaseSvc.Resolve(ctx, nil, req.TenantAccount); err == nil && view != nil {
		leaseID := view.LeaseID
		propertyID := view.PropertyID
		entry.LeaseID = &leaseID
		entry.PropertyID = &propertyID
		entry.UnitLabel = view.UnitLabel
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.LedgerEntry{}, err
	}
	return entry, nil
}
