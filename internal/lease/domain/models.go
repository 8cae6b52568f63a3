package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LeaseRole distinguishes the primary tenant from roommates on a lease.
type LeaseRole string

const (
	LeaseRolePrimary  LeaseRole = "primary"
	LeaseRoleRoommate LeaseRole = "roommate"
)

type RoommateShareStatus string

const (
	RoommateShareStatusActive  RoommateShareStatus = "active"
	RoommateShareStatusRemoved RoommateShareStatus = "removed"
)

// Lease binds the primary tenant to a unit. Rent is stored per unit; each
// tenant's billable share is derived from roommate splits at resolve time.
type Lease struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantAccount string       `gorm:"not null;index" json:"tenant_account"`
	OwnerAccount  string       `gorm:"not null" json:"owner_account"`
	PropertyID    snowflake.ID `gorm:"not null" json:"property_id"`
	UnitLabel     string       `gorm:"not null" json:"unit_label"`
	StartDate     time.Time    `gorm:"not null" json:"start_date"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	IsActive      bool         `gorm:"not null;default:true" json:"is_active"`
	UnitRent      int64        `gorm:"not null" json:"unit_rent"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lease) TableName() string { return "leases" }

type RoommateShare struct {
	ID            snowflake.ID        `gorm:"primaryKey" json:"id"`
	LeaseID       snowflake.ID        `gorm:"not null;index" json:"lease_id"`
	TenantAccount string              `gorm:"not null;index" json:"tenant_account"`
	SharePercent  int                 `gorm:"not null" json:"share_percent"`
	Status        RoommateShareStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RoommateShare) TableName() string { return "roommate_shares" }

// LeaseView is the resolved billing context for one tenant account.
type LeaseView struct {
	LeaseID       snowflake.ID `json:"lease_id"`
	TenantAccount string       `json:"tenant_account"`
	Role          LeaseRole    `json:"role"`
	OwnerAccount  string       `json:"owner_account"`
	PropertyID    snowflake.ID `json:"property_id"`
	UnitLabel     string       `json:"unit_label"`
	UnitRent      int64        `json:"unit_rent"`
	SharePercent  int          `json:"share_percent"`
	RentShare     int64        `json:"rent_share"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
}
