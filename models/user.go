package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Superadmin is tenant-less and may provision new tenants;
// every other role belongs to exactly one tenant.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleConsultant = "consultant"
	RoleAccountant = "accountant"
	RoleSuperadmin = "superadmin"
)

// User statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserProfile links an authenticated identity to a tenant and role.
// A profile with a nil TenantID is unauthorized for every tenant-scoped
// route; the guard chain rejects it before any data access runs.
type UserProfile struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName          string         `gorm:"not null" json:"first_name"`
	LastName           string         `gorm:"not null" json:"last_name"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone              string         `json:"phone"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               string         `gorm:"not null;default:'technician'" json:"role"` // admin, technician, consultant, accountant, superadmin
	Status             string         `gorm:"not null;default:'active'" json:"status"`   // active, inactive
	MustChangePassword bool           `gorm:"not null;default:false" json:"must_change_password"`
	TenantID           *uuid.UUID     `gorm:"type:uuid;index" json:"tenant_id"` // nullable, nil means tenant-unverified
	Tenant             *Tenant        `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (u *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the display name used on invoices and reports
func (u *UserProfile) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsActive reports whether the profile may sign in
func (u *UserProfile) IsActive() bool {
	return u.Status == StatusActive
}
