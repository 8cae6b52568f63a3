package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/lease/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("lease.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Resolve(ctx context.Context, tx *gorm.DB, tenantAccount string) (*domain.LeaseView, error) {
	tenantAccount = strings.TrimSpace(tenantAccount)
	if tenantAccount == "" {
		return nil, domain.ErrInvalidTenantAccount
	}
	if tx == nil {
		tx = s.db
	}

	lease, err := s.repo.FindActiveByPrimary(ctx, tx, tenantAccount)
	if err != nil {
		return nil, err
	}
	if lease != nil {
		return s.buildView(ctx, tx, lease, tenantAccount, domain.LeaseRolePrimary)
	}

	share, err := s.repo.FindActiveShareByTenant(ctx, tx, tenantAccount)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, nil
	}
	lease, err = s.repo.FindByID(ctx, tx, share.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil || !lease.IsActive {
		return nil, nil
	}
	return s.buildView(ctx, tx, lease, tenantAccount, domain.LeaseRoleRoommate)
}

func (s *Service) buildView(ctx context.Context, tx *gorm.DB, lease *domain.Lease, tenantAccount string, role domain.LeaseRole) (*domain.LeaseView, error) {
	shares, err := s.repo.ListActiveShares(ctx, tx, lease.ID)
	if err != nil {
		return nil, err
	}

	stakes := buildStakes(lease, shares)
	amounts := allocateRent(lease.UnitRent, stakes)

	for i, st := range stakes {
		if st.account != tenantAccount {
			continue
		}
		if role == domain.LeaseRolePrimary && i != 0 {
			continue
		}
		if role == domain.LeaseRoleRoommate && i == 0 {
			continue
		}
		return &domain.LeaseView{
			LeaseID:       lease.ID,
			TenantAccount: tenantAccount,
			Role:          role,
			OwnerAccount:  lease.OwnerAccount,
			PropertyID:    lease.PropertyID,
			UnitLabel:     lease.UnitLabel,
			UnitRent:      lease.UnitRent,
			SharePercent:  st.percent,
			RentShare:     amounts[i],
			StartDate:     lease.StartDate,
			EndDate:       lease.EndDate,
		}, nil
	}
	return nil, nil
}

type stake struct {
	account string
	percent int
}

// buildStakes orders the primary tenant first, then roommates by share ID, so
// largest-remainder ties resolve deterministically.
func buildStakes(lease *domain.Lease, shares []domain.RoommateShare) []stake {
	total := 0
	for _, sh := range shares {
		total += sh.SharePercent
	}
	primary := 100 - total
	if primary < 1 {
		primary = 1
	}
	stakes := make([]stake, 0, len(shares)+1)
	stakes = append(stakes, stake{account: lease.TenantAccount, percent: primary})
	for _, sh := range shares {
		stakes = append(stakes, stake{account: sh.TenantAccount, percent: sh.SharePercent})
	}
	return stakes
}

// allocateRent splits unitRent by percentage using largest-remainder
// allocation so the per-tenant amounts always sum to the unit rent exactly.
func allocateRent(unitRent int64, stakes []stake) []int64 {
	amounts := make([]int64, len(stakes))
	remainders := make([]int64, len(stakes))
	var allocated int64
	for i, st := range stakes {
		exact := unitRent * int64(st.percent)
		amounts[i] = exact / 100
		remainders[i] = exact % 100
		allocated += amounts[i]
	}
	leftover := unitRent - allocated
	for leftover > 0 {
		best := -1
		for i := range stakes {
			if remainders[i] == 0 {
				continue
			}
			if best == -1 || remainders[i] > remainders[best] {
				best = i
			}
		}
		if best == -1 {
			break
		}
		amounts[best]++
		remainders[best] = 0
		leftover--
	}
	return amounts
}

func (s *Service) AssignLease(ctx context.Context, req domain.AssignLeaseRequest) (domain.Lease, error) {
	req.TenantAccount = strings.TrimSpace(req.TenantAccount)
	req.OwnerAccount = strings.TrimSpace(req.OwnerAccount)
	if req.TenantAccount == "" {
		return domain.Lease{}, domain.ErrInvalidTenantAccount
	}
	if req.OwnerAccount == "" {
		return domain.Lease{}, domain.ErrInvalidOwnerAccount
	}
	if req.UnitRent <= 0 {
		return domain.Lease{}, domain.ErrInvalidUnitRent
	}
	if req.StartDate.IsZero() {
		return domain.Lease{}, domain.ErrInvalidStartDate
	}

	existing, err := s.repo.FindActiveByPrimary(ctx, s.db, req.TenantAccount)
	if err != nil {
		return domain.Lease{}, err
	}
	if existing != nil {
		return domain.Lease{}, domain.ErrLeaseAlreadyActive
	}

	now := time.Now().UTC()
	lease := domain.Lease{
		ID:            s.genID.Generate(),
		TenantAccount: req.TenantAccount,
		OwnerAccount:  req.OwnerAccount,
		PropertyID:    req.PropertyID,
		UnitLabel:     strings.TrimSpace(req.UnitLabel),
		StartDate:     req.StartDate.UTC(),
		IsActive:      true,
		UnitRent:      req.UnitRent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &lease); err != nil {
		return domain.Lease{}, err
	}
	s.log.Info("lease.assigned",
		zap.String("lease_id", lease.ID.String()),
		zap.String("tenant_account", lease.TenantAccount),
		zap.Int64("unit_rent", lease.UnitRent),
	)
	return lease, nil
}

func (s *Service) TerminateLease(ctx context.Context, leaseID snowflake.ID) error {
	lease, err := s.repo.FindByID(ctx, s.db, leaseID)
	if err != nil {
		return err
	}
	if lease == nil {
		return domain.ErrLeaseNotFound
	}
	if err := s.repo.End(ctx, s.db, leaseID); err != nil {
		return err
	}
	s.log.Info("lease.terminated", zap.String("lease_id", leaseID.String()))
	return nil
}

func (s *Service) AddRoommate(ctx context.Context, req domain.AddRoommateRequest) (domain.RoommateShare, error) {
	req.TenantAccount = strings.TrimSpace(req.TenantAccount)
	if req.TenantAccount == "" {
		return domain.RoommateShare{}, domain.ErrInvalidTenantAccount
	}
	if req.SharePercent < 1 || req.SharePercent > 100 {
		return domain.RoommateShare{}, domain.ErrInvalidSharePercent
	}

	lease, err := s.repo.FindByID(ctx, s.db, req.LeaseID)
	if err != nil {
		return domain.RoommateShare{}, err
	}
	if lease == nil || !lease.IsActive {
		return domain.RoommateShare{}, domain.ErrLeaseNotFound
	}

	shares, err := s.repo.ListActiveShares(ctx, s.db, req.LeaseID)
	if err != nil {
		return domain.RoommateShare{}, err
	}
	total := req.SharePercent
	for _, sh := range shares {
		total += sh.SharePercent
	}
	if total > 100 {
		return domain.RoommateShare{}, domain.ErrShareOverAllocated
	}

	now := time.Now().UTC()
	share := domain.RoommateShare{
		ID:            s.genID.Generate(),
		LeaseID:       req.LeaseID,
		TenantAccount: req.TenantAccount,
		SharePercent:  req.SharePercent,
		Status:        domain.RoommateShareStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertShare(ctx, s.db, &share); err != nil {
		return domain.RoommateShare{}, err
	}
	return share, nil
}

func (s *Service) RemoveRoommate(ctx context.Context, shareID snowflake.ID) error {
	return s.repo.RemoveShare(ctx, s.db, shareID)
}

func (s *Service) ListBillableAccounts(ctx context.Context) ([]string, error) {
	return s.repo.ListBillableAccounts(ctx, s.db)
}
