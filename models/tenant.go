package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents one service-shop business, the unit of data isolation.
// Every tenant-scoped record carries a foreign key back to its tenant.
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	LogoS3Key *string        `json:"logo_s3_key,omitempty"`       // nullable, S3 key for the shop logo
	LogoURL   *string        `gorm:"-" json:"logo_url,omitempty"` // presigned URL, filled on read
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
