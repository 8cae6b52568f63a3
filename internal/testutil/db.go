package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var tables = []string{
	`CREATE TABLE leases (
		id INTEGER PRIMARY KEY,
		tenant_account TEXT NOT NULL,
		owner_account TEXT NOT NULL,
		property_id INTEGER,
		unit_label TEXT NOT NULL DEFAULT '',
		start_date DATETIME,
		end_date DATETIME,
		is_active BOOLEAN NOT NULL DEFAULT true,
		unit_rent INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE roommate_shares (
		id INTEGER PRIMARY KEY,
		lease_id INTEGER NOT NULL,
		tenant_account TEXT NOT NULL,
		share_percent INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY,
		payer_account TEXT NOT NULL,
		payer_role TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		provider TEXT NOT NULL,
		reference TEXT NOT NULL,
		amount INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'submitted',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE payment_methods (
		id INTEGER PRIMARY KEY,
		tenant_account TEXT NOT NULL,
		provider TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		last4 TEXT NOT NULL DEFAULT '',
		is_default BOOLEAN NOT NULL DEFAULT false,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE ledger_entries (
		id INTEGER PRIMARY KEY,
		tenant_account TEXT NOT NULL,
		property_id INTEGER,
		unit_label TEXT NOT NULL DEFAULT '',
		lease_id INTEGER,
		entry_type TEXT NOT NULL,
		category TEXT NOT NULL,
		amount INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		due_date DATETIME,
		statement_month TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		source_payment_id INTEGER UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE autopay_settings (
		id INTEGER PRIMARY KEY,
		tenant_account TEXT NOT NULL UNIQUE,
		payment_method_id INTEGER,
		is_enabled BOOLEAN NOT NULL DEFAULT false,
		payment_day INTEGER NOT NULL DEFAULT 1,
		notify_days_before INTEGER NOT NULL DEFAULT 3,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY,
		account TEXT NOT NULL,
		text TEXT NOT NULL,
		link TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME
	)`,
}

// OpenDB opens a per-test in-memory database with the full schema. Each test
// gets its own database name so parallel tests never share state.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range tables {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}
