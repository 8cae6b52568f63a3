package repository

import (
	"context"

	"github.com/smallbiznis/rentledger/internal/autopay/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

const settingColumns = `id, tenant_account, payment_method_id, is_enabled, payment_day, notify_days_before, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *domain.Setting) error {
	return db.WithContext(ctx).Exec(`
INSERT INTO autopay_settings (id, tenant_account, payment_method_id, is_enabled, payment_day, notify_days_before, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.TenantAccount, s.PaymentMethodID, s.IsEnabled, s.PaymentDay, s.NotifyDaysBefore, s.CreatedAt, s.UpdatedAt).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, s *domain.Setting) error {
	return db.WithContext(ctx).Exec(`
UPDATE autopay_settings
SET payment_method_id = ?, is_enabled = ?, payment_day = ?, notify_days_before = ?, updated_at = ?
WHERE id = ?
`, s.PaymentMethodID, s.IsEnabled, s.PaymentDay, s.NotifyDaysBefore, s.UpdatedAt, s.ID).Error
}

func (r *repo) FindByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (*domain.Setting, error) {
	var s domain.Setting
	err := db.WithContext(ctx).Raw(`
SELECT `+settingColumns+` FROM autopay_settings WHERE tenant_account = ?
`, tenantAccount).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) ListEnabled(ctx context.Context, db *gorm.DB) ([]domain.Setting, error) {
	var rows []domain.Setting
	err := db.WithContext(ctx).Raw(`
SELECT ` + settingColumns + ` FROM autopay_settings WHERE is_enabled = true ORDER BY id ASC
`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
