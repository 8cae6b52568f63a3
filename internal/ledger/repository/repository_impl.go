package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const entryColumns = `id, tenant_account, property_id, unit_label, lease_id, entry_type, category,
	amount, status, due_date, statement_month, note, source_payment_id, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantAccount,
		entry.PropertyID,
		entry.UnitLabel,
		entry.LeaseID,
		entry.EntryType,
		entry.Category,
		entry.Amount,
		entry.Status,
		entry.DueDate,
		entry.StatementMonth,
		entry.Note,
		entry.SourcePaymentID,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM ledger_entries WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) FindBySourcePayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM ledger_entries WHERE source_payment_id = ?`,
		paymentID,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) RefreshFromPayment(ctx context.Context, db *gorm.DB, entryID snowflake.ID, amount int64, status domain.EntryStatus, note string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET amount = ?, status = ?, note = ?, updated_at = ? WHERE id = ?`,
		amount,
		status,
		note,
		time.Now().UTC(),
		entryID,
	).Error
}

func (r *repo) FindMonthRentCharge(ctx context.Context, db *gorm.DB, tenantAccount, month string) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE tenant_account = ? AND statement_month = ?
		   AND entry_type = ? AND category = ? AND status != ?
		 ORDER BY id ASC
		 LIMIT 1`,
		tenantAccount,
		month,
		domain.EntryTypeCharge,
		domain.CategoryRent,
		domain.EntryStatusVoid,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) HasMonthLateFee(ctx context.Context, db *gorm.DB, tenantAccount, month string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM ledger_entries
		 WHERE tenant_account = ? AND statement_month = ? AND entry_type = ? AND status != ?`,
		tenantAccount,
		month,
		domain.EntryTypeLateFee,
		domain.EntryStatusVoid,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) MonthChargedTotal(ctx context.Context, db *gorm.DB, tenantAccount, month string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		 WHERE tenant_account = ? AND statement_month = ?
		   AND entry_type IN (?, ?, ?) AND status != ?`,
		tenantAccount,
		month,
		domain.EntryTypeCharge,
		domain.EntryTypeLateFee,
		domain.EntryTypeAdjustment,
		domain.EntryStatusVoid,
	).Scan(&total).Error
	return total, err
}

func (r *repo) MonthPaidTotal(ctx context.Context, db *gorm.DB, tenantAccount, month string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(-SUM(amount), 0) FROM ledger_entries
		 WHERE tenant_account = ? AND statement_month = ?
		   AND entry_type = ? AND status = ?`,
		tenantAccount,
		month,
		domain.EntryTypePayment,
		domain.EntryStatusPaid,
	).Scan(&total).Error
	return total, err
}

func (r *repo) ResetAllocations(ctx context.Context, db *gorm.DB, tenantAccount string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET status = ?, updated_at = ?
		 WHERE tenant_account = ? AND entry_type IN (?, ?, ?) AND status = ?`,
		domain.EntryStatusOpen,
		time.Now().UTC(),
		tenantAccount,
		domain.EntryTypeCharge,
		domain.EntryTypeLateFee,
		domain.EntryTypeAdjustment,
		domain.EntryStatusPaid,
	).Error
}

func (r *repo) PaidCredit(ctx context.Context, db *gorm.DB, tenantAccount string) (int64, error) {
	var credit int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(-SUM(amount), 0) FROM ledger_entries
		 WHERE tenant_account = ? AND entry_type = ? AND status = ?`,
		tenantAccount,
		domain.EntryTypePayment,
		domain.EntryStatusPaid,
	).Scan(&credit).Error
	return credit, err
}

func (r *repo) ListOpenCharges(ctx context.Context, db *gorm.DB, tenantAccount string) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE tenant_account = ? AND entry_type IN (?, ?, ?) AND status = ?
		 ORDER BY COALESCE(due_date, created_at) ASC, id ASC`,
		tenantAccount,
		domain.EntryTypeCharge,
		domain.EntryTypeLateFee,
		domain.EntryTypeAdjustment,
		domain.EntryStatusOpen,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET status = ?, updated_at = ? WHERE id = ?`,
		domain.EntryStatusPaid,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) SumByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (domain.TenantSums, error) {
	var sums domain.TenantSums
	err := db.WithContext(ctx).Raw(
		`SELECT
		   COALESCE(SUM(CASE WHEN entry_type IN (?, ?, ?) THEN amount ELSE 0 END), 0) AS charges,
		   COALESCE(SUM(CASE WHEN entry_type = ? AND status = ? THEN -amount ELSE 0 END), 0) AS paid,
		   COALESCE(SUM(CASE WHEN entry_type = ? AND status = ? THEN -amount ELSE 0 END), 0) AS submitted,
		   COALESCE(SUM(CASE WHEN entry_type = ? AND status = ? THEN -amount ELSE 0 END), 0) AS failed
		 FROM ledger_entries
		 WHERE tenant_account = ? AND status != ?`,
		domain.EntryTypeCharge,
		domain.EntryTypeLateFee,
		domain.EntryTypeAdjustment,
		domain.EntryTypePayment,
		domain.EntryStatusPaid,
		domain.EntryTypePayment,
		domain.EntryStatusSubmitted,
		domain.EntryTypePayment,
		domain.EntryStatusFailed,
		tenantAccount,
		domain.EntryStatusVoid,
	).Scan(&sums).Error
	return sums, err
}

func (r *repo) ListByMonth(ctx context.Context, db *gorm.DB, tenantAccount, month string) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE tenant_account = ? AND statement_month = ?
		 ORDER BY created_at ASC, id ASC`,
		tenantAccount,
		month,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) SetVoid(ctx context.Context, db *gorm.DB, id snowflake.ID, note string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET status = ?, note = ?, updated_at = ? WHERE id = ?`,
		domain.EntryStatusVoid,
		note,
		time.Now().UTC(),
		id,
	).Error
}
