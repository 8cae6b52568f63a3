package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	CountSameOnDay(ctx context.Context, db *gorm.DB, account, text string, day time.Time) (int64, error)
	ListByAccount(ctx context.Context, db *gorm.DB, account string, limit int) ([]Notification, error)
}

type Service interface {
	Notify(ctx context.Context, account, text, link, category string) error

	// SentToday reports whether an identical text was already recorded for the
	// account on the given calendar day. This is the only duplicate-reminder
	// guard within a sweep.
	SentToday(ctx context.Context, account, text string, day time.Time) (bool, error)

	ListByAccount(ctx context.Context, account string, limit int) ([]Notification, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrInvalidText    = errors.New("invalid_text")
)
