package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

const paymentColumns = `id, payer_account, payer_role, payment_type, provider, reference, amount, status, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Payment) error {
	return db.WithContext(ctx).Exec(`
INSERT INTO payments (id, payer_account, payer_role, payment_type, provider, reference, amount, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ID, p.PayerAccount, p.PayerRole, p.PaymentType, p.Provider, p.Reference, p.Amount, p.Status, p.CreatedAt, p.UpdatedAt).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Raw(`
SELECT `+paymentColumns+` FROM payments WHERE id = ?
`, id).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.PaymentStatus, at time.Time) error {
	return db.WithContext(ctx).Exec(`
UPDATE payments SET status = ?, updated_at = ? WHERE id = ?
`, status, at, id).Error
}

func (r *repo) FindAutopayForMonth(ctx context.Context, db *gorm.DB, tenantAccount, providerPrefix string, monthStart, monthEnd time.Time) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Raw(`
SELECT `+paymentColumns+` FROM payments
WHERE payer_account = ?
  AND payer_role = 'tenant'
  AND payment_type = 'rent'
  AND provider LIKE ?
  AND status IN ('paid', 'submitted')
  AND created_at >= ? AND created_at < ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`, tenantAccount, providerPrefix+"%", monthStart, monthEnd).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

const methodColumns = `id, tenant_account, provider, label, last4, is_default, status, created_at, updated_at`

func (r *repo) InsertMethod(ctx context.Context, db *gorm.DB, m *domain.PaymentMethod) error {
	return db.WithContext(ctx).Exec(`
INSERT INTO payment_methods (id, tenant_account, provider, label, last4, is_default, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, m.ID, m.TenantAccount, m.Provider, m.Label, m.Last4, m.IsDefault, m.Status, m.CreatedAt, m.UpdatedAt).Error
}

func (r *repo) FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := db.WithContext(ctx).Raw(`
SELECT `+methodColumns+` FROM payment_methods WHERE id = ?
`, id).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindDefaultMethod(ctx context.Context, db *gorm.DB, tenantAccount string) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := db.WithContext(ctx).Raw(`
SELECT `+methodColumns+` FROM payment_methods
WHERE tenant_account = ? AND status = 'active' AND is_default = ?
ORDER BY id ASC
LIMIT 1
`, tenantAccount, true).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindAnyActiveMethod(ctx context.Context, db *gorm.DB, tenantAccount string) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := db.WithContext(ctx).Raw(`
SELECT `+methodColumns+` FROM payment_methods
WHERE tenant_account = ? AND status = 'active'
ORDER BY id ASC
LIMIT 1
`, tenantAccount).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListMethods(ctx context.Context, db *gorm.DB, tenantAccount string) ([]domain.PaymentMethod, error) {
	var rows []domain.PaymentMethod
	err := db.WithContext(ctx).Raw(`
SELECT `+methodColumns+` FROM payment_methods
WHERE tenant_account = ? AND status = 'active'
ORDER BY is_default DESC, id ASC
`, tenantAccount).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB, tenantAccount string, at time.Time) error {
	return db.WithContext(ctx).Exec(`
UPDATE payment_methods SET is_default = ?, updated_at = ?
WHERE tenant_account = ? AND is_default = ?
`, false, at, tenantAccount, true).Error
}

func (r *repo) SetDefault(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(`
UPDATE payment_methods SET is_default = ?, updated_at = ? WHERE id = ?
`, true, at, id).Error
}

func (r *repo) RemoveMethod(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(`
UPDATE payment_methods SET status = 'removed', is_default = ?, updated_at = ? WHERE id = ?
`, false, at, id).Error
}
