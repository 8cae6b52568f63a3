package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/lease/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lease *domain.Lease) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO leases (id, tenant_account, owner_account, property_id, unit_label, start_date, end_date, is_active, unit_rent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lease.ID,
		lease.TenantAccount,
		lease.OwnerAccount,
		lease.PropertyID,
		lease.UnitLabel,
		lease.StartDate,
		lease.EndDate,
		lease.IsActive,
		lease.UnitRent,
		lease.CreatedAt,
		lease.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Lease, error) {
	var lease domain.Lease
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_account, owner_account, property_id, unit_label, start_date, end_date, is_active, unit_rent, created_at, updated_at
		 FROM leases WHERE id = ?`,
		id,
	).Scan(&lease).Error
	if err != nil {
		return nil, err
	}
	if lease.ID == 0 {
		return nil, nil
	}
	return &lease, nil
}

func (r *repo) FindActiveByPrimary(ctx context.Context, db *gorm.DB, tenantAccount string) (*domain.Lease, error) {
	var lease domain.Lease
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_account, owner_account, property_id, unit_label, start_date, end_date, is_active, unit_rent, created_at, updated_at
		 FROM leases
		 WHERE tenant_account = ? AND is_active = ?
		 ORDER BY start_date DESC, id DESC
		 LIMIT 1`,
		tenantAccount,
		true,
	).Scan(&lease).Error
	if err != nil {
		return nil, err
	}
	if lease.ID == 0 {
		return nil, nil
	}
	return &lease, nil
}

func (r *repo) FindActiveShareByTenant(ctx context.Context, db *gorm.DB, tenantAccount string) (*domain.RoommateShare, error) {
	var share domain.RoommateShare
	err := db.WithContext(ctx).Raw(
		`SELECT rs.id, rs.lease_id, rs.tenant_account, rs.share_percent, rs.status, rs.created_at, rs.updated_at
		 FROM roommate_shares rs
		 JOIN leases l ON l.id = rs.lease_id
		 WHERE rs.tenant_account = ? AND rs.status = ? AND l.is_active = ?
		 ORDER BY rs.id DESC
		 LIMIT 1`,
		tenantAccount,
		domain.RoommateShareStatusActive,
		true,
	).Scan(&share).Error
	if err != nil {
		return nil, err
	}
	if share.ID == 0 {
		return nil, nil
	}
	return &share, nil
}

func (r *repo) ListActiveShares(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]domain.RoommateShare, error) {
	var shares []domain.RoommateShare
	err := db.WithContext(ctx).Raw(
		`SELECT id, lease_id, tenant_account, share_percent, status, created_at, updated_at
		 FROM roommate_shares
		 WHERE lease_id = ? AND status = ?
		 ORDER BY id ASC`,
		leaseID,
		domain.RoommateShareStatusActive,
	).Scan(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *repo) End(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`UPDATE leases SET is_active = ?, end_date = COALESCE(end_date, ?), updated_at = ? WHERE id = ?`,
		false,
		now,
		now,
		id,
	).Error
}

func (r *repo) InsertShare(ctx context.Context, db *gorm.DB, share *domain.RoommateShare) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO roommate_shares (id, lease_id, tenant_account, share_percent, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		share.ID,
		share.LeaseID,
		share.TenantAccount,
		share.SharePercent,
		share.Status,
		share.CreatedAt,
		share.UpdatedAt,
	).Error
}

func (r *repo) RemoveShare(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE roommate_shares SET status = ?, updated_at = ? WHERE id = ?`,
		domain.RoommateShareStatusRemoved,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) ListBillableAccounts(ctx context.Context, db *gorm.DB) ([]string, error) {
	var accounts []string
	err := db.WithContext(ctx).Raw(
		`SELECT tenant_account FROM leases WHERE is_active = ?
		 UNION
		 SELECT rs.tenant_account
		 FROM roommate_shares rs
		 JOIN leases l ON l.id = rs.lease_id
		 WHERE rs.status = ? AND l.is_active = ?
		 ORDER BY tenant_account`,
		true,
		domain.RoommateShareStatusActive,
		true,
	).Scan(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
