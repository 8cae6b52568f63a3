package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	autopaydomain "github.com/smallbiznis/rentledger/internal/autopay/domain"
	"github.com/smallbiznis/rentledger/internal/billing"
	"github.com/smallbiznis/rentledger/internal/clock"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	"github.com/smallbiznis/rentledger/internal/scheduler/guard"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_sweeper_config")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	LeaseSvc   leasedomain.Service
	AutopaySvc autopaydomain.Service
	Pipeline   *billing.Pipeline
	Clock      clock.Clock
	Config     Config `optional:"true"`
}

// Sweeper drives the daily billing pass: monthly charges and late fees for
// every billable account, then autopay reminders and autopay execution.
type Sweeper struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	guard      *guard.SweepGuard
	clock      clock.Clock
	leaseSvc   leasedomain.Service
	autopaySvc autopaydomain.Service
	pipeline   *billing.Pipeline
}

func New(p Params) (*Sweeper, error) {
	if p.DB == nil || p.Log == nil || p.LeaseSvc == nil || p.AutopaySvc == nil || p.Pipeline == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Sweeper{
		db:         p.DB,
		log:        p.Log.Named("sweeper").With(zap.String("component", "sweeper")),
		cfg:        p.Config.withDefaults(),
		guard:      guard.New(),
		clock:      p.Clock,
		leaseSvc:   p.LeaseSvc,
		autopaySvc: p.AutopaySvc,
		pipeline:   p.Pipeline,
	}, nil
}

func (s *Sweeper) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	metrics := obsmetrics.Sweeper()
	metrics.IncJobRun(name)
	s.log.Info("job started", zap.String("job", name))

	err := fn(ctx)
	metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		s.log.Info("job finished", zap.String("job", name))
		return nil
	}

	metrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	s.log.Error("job failed", zap.String("job", name), zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes one full sweep when the guard allows it. A sweep that is
// skipped because another one is running or ran too recently is not an error.
func (s *Sweeper) RunOnce(parent context.Context) error {
	now := s.clock.Now()
	if !s.guard.TryBegin(now, s.cfg.MinSweepInterval) {
		obsmetrics.Sweeper().IncSweepSkipped()
		s.log.Info("sweep skipped", zap.Time("last_run", s.guard.LastRun()))
		return nil
	}
	defer s.guard.End()

	var err error
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"rent_charges", s.RentChargesJob},
		{"autopay_reminders", s.AutopayRemindersJob},
		{"autopay_run", s.AutopayRunJob},
	}
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}
	return err
}

func (s *Sweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// RentChargesJob pipelines every billable account so rent charges and late
// fees appear even for tenants with no payment activity.
func (s *Sweeper) RentChargesJob(ctx context.Context) error {
	now := s.clock.Now()
	accounts, err := s.leaseSvc.ListBillableAccounts(ctx)
	if err != nil {
		return err
	}

	var jobErr error
	for _, account := range accounts {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}
		if _, err := s.pipeline.Run(ctx, account, now); err != nil {
			jobErr = errors.Join(jobErr, fmt.Errorf("account %s: %w", account, err))
			s.log.Error("rent charge sweep failed",
				zap.String("tenant_account", account),
				zap.Error(err),
			)
		}
	}
	return jobErr
}

func (s *Sweeper) AutopayRemindersJob(ctx context.Context) error {
	sent, err := s.autopaySvc.SendReminders(ctx, s.clock.Now())
	if sent > 0 {
		s.log.Info("autopay reminders sent", zap.Int("count", sent))
	}
	return err
}

func (s *Sweeper) AutopayRunJob(ctx context.Context) error {
	return s.autopaySvc.RunAutopay(ctx, s.clock.Now())
}
