package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/rentledger/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Exec(`
INSERT INTO notifications (id, account, text, link, category, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, n.ID, n.Account, n.Text, n.Link, n.Category, n.Metadata, n.CreatedAt).Error
}

func (r *repo) CountSameOnDay(ctx context.Context, db *gorm.DB, account, text string, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	err := db.WithContext(ctx).Raw(`
SELECT COUNT(*) FROM notifications
WHERE account = ? AND text = ? AND created_at >= ? AND created_at < ?
`, account, text, start, end).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListByAccount(ctx context.Context, db *gorm.DB, account string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []domain.Notification
	err := db.WithContext(ctx).Raw(`
SELECT id, account, text, link, category, metadata, created_at
FROM notifications
WHERE account = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, account, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
