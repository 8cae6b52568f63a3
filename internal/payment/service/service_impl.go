package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/rentledger/internal/billing"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Pipeline *billing.Pipeline
	Policy   *config.BillingPolicyHolder
	Clock    clock.Clock
	GenID    *snowflake.Node
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	pipeline *billing.Pipeline
	policy   *config.BillingPolicyHolder
	clock    clock.Clock
	genID    *snowflake.Node
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		repo:     p.Repo,
		pipeline: p.Pipeline,
		policy:   p.Policy,
		clock:    p.Clock,
		genID:    p.GenID,
	}
}

func (s *service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Payment, error) {
	req.PayerAccount = strings.TrimSpace(req.PayerAccount)
	if req.PayerAccount == "" {
		return nil, domain.ErrInvalidPayerAccount
	}
	if req.PayerRole == "" {
		req.PayerRole = domain.PayerRoleTenant
	}
	if req.PayerRole != domain.PayerRoleTenant {
		return nil, domain.ErrInvalidPayerRole
	}
	switch req.PaymentType {
	case domain.PaymentTypeRent, domain.PaymentTypeBill:
	default:
		return nil, domain.ErrInvalidPaymentType
	}
	req.Provider = strings.TrimSpace(req.Provider)
	if req.Provider == "" {
		return nil, domain.ErrInvalidProvider
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	p := &domain.Payment{
		ID:           s.genID.Generate(),
		PayerAccount: req.PayerAccount,
		PayerRole:    req.PayerRole,
		PaymentType:  req.PaymentType,
		Provider:     req.Provider,
		Reference:    uuid.NewString(),
		Amount:       req.Amount,
		Status:       domain.PaymentStatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		s.log.Error("failed to insert payment", zap.String("payer_account", p.PayerAccount), zap.Error(err))
		return nil, err
	}

	if _, err := s.pipeline.Run(ctx, p.PayerAccount, now); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) SetStatus(ctx context.Context, id snowflake.ID, status domain.PaymentStatus) (*domain.Payment, error) {
	switch status {
	case domain.PaymentStatusPaid, domain.PaymentStatusFailed:
	default:
		return nil, domain.ErrInvalidStatus
	}

	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPaymentNotFound
	}
	if p.Status != domain.PaymentStatusSubmitted {
		return nil, domain.ErrStatusNotMutable
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, id, status, now); err != nil {
		return nil, err
	}
	p.Status = status
	p.UpdatedAt = now

	if _, err := s.pipeline.Run(ctx, p.PayerAccount, now); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) FindByID(ctx context.Context, id snowflake.ID) (*domain.Payment, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *service) FindAutopayForMonth(ctx context.Context, tenantAccount string, now time.Time) (*domain.Payment, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	prefix := s.policy.Current().AutopayProviderPrefix + ":"
	return s.repo.FindAutopayForMonth(ctx, s.db, tenantAccount, prefix, monthStart, monthEnd)
}

func (s *service) ResolveMethod(ctx context.Context, tenantAccount string, methodID *snowflake.ID) (*domain.PaymentMethod, error) {
	if methodID != nil && *methodID != 0 {
		m, err := s.repo.FindMethodByID(ctx, s.db, *methodID)
		if err != nil {
			return nil, err
		}
		if m != nil && m.TenantAccount == tenantAccount && m.Status == domain.MethodStatusActive {
			return m, nil
		}
	}
	m, err := s.repo.FindDefaultMethod(ctx, s.db, tenantAccount)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	return s.repo.FindAnyActiveMethod(ctx, s.db, tenantAccount)
}

func (s *service) AddMethod(ctx context.Context, req domain.AddMethodRequest) (*domain.PaymentMethod, error) {
	req.TenantAccount = strings.TrimSpace(req.TenantAccount)
	if req.TenantAccount == "" {
		return nil, domain.ErrInvalidPayerAccount
	}
	req.Provider = strings.TrimSpace(req.Provider)
	if req.Provider == "" {
		return nil, domain.ErrInvalidProvider
	}

	now := s.clock.Now()
	m := &domain.PaymentMethod{
		ID:            s.genID.Generate(),
		TenantAccount: req.TenantAccount,
		Provider:      req.Provider,
		Label:         req.Label,
		Last4:         req.Last4,
		IsDefault:     req.IsDefault,
		Status:        domain.MethodStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, m.TenantAccount, now); err != nil {
				return err
			}
		}
		return s.repo.InsertMethod(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) RemoveMethod(ctx context.Context, tenantAccount string, id snowflake.ID) error {
	m, err := s.repo.FindMethodByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if m == nil || m.TenantAccount != tenantAccount || m.Status != domain.MethodStatusActive {
		return domain.ErrMethodNotFound
	}
	return s.repo.RemoveMethod(ctx, s.db, id, s.clock.Now())
}

func (s *service) ListMethods(ctx context.Context, tenantAccount string) ([]domain.PaymentMethod, error) {
	return s.repo.ListMethods(ctx, s.db, tenantAccount)
}

func (s *service) RecordAutopayPayment(ctx context.Context, tenantAccount, provider string, amount int64, at time.Time) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	p := &domain.Payment{
		ID:           s.genID.Generate(),
		PayerAccount: tenantAccount,
		PayerRole:    domain.PayerRoleTenant,
		PaymentType:  domain.PaymentTypeRent,
		Provider:     s.policy.Current().AutopayProviderPrefix + ":" + provider,
		Reference:    uuid.NewString(),
		Amount:       amount,
		Status:       domain.PaymentStatusPaid,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}
