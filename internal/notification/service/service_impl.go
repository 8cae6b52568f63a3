package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
	GenID *snowflake.Node
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		repo:  p.Repo,
		clock: p.Clock,
		genID: p.GenID,
	}
}

func (s *service) Notify(ctx context.Context, account, text, link, category string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domain.ErrInvalidAccount
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrInvalidText
	}

	n := &domain.Notification{
		ID:        s.genID.Generate(),
		Account:   account,
		Text:      text,
		Link:      link,
		Category:  category,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, n); err != nil {
		s.log.Error("failed to insert notification", zap.String("account", account), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) SentToday(ctx context.Context, account, text string, day time.Time) (bool, error) {
	count, err := s.repo.CountSameOnDay(ctx, s.db, account, text, day)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *service) ListByAccount(ctx context.Context, account string, limit int) ([]domain.Notification, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, domain.ErrInvalidAccount
	}
	return s.repo.ListByAccount(ctx, s.db, account, limit)
}
