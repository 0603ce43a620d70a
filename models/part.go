package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Part represents one stocked item in a shop's parts inventory
type Part struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string         `gorm:"not null" json:"name"`
	SKU       string         `gorm:"index" json:"sku"`
	Stock     int            `gorm:"not null;default:0" json:"stock"`
	UnitPrice float64        `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	MinStock  int            `gorm:"not null;default:0" json:"min_stock"` // reorder threshold shown on the inventory screen
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Part model
func (Part) TableName() string {
	return "parts"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (p *Part) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BelowMinStock reports whether the part needs reordering
func (p *Part) BelowMinStock() bool {
	return p.Stock < p.MinStock
}

// GetTenantID returns the owning tenant id
func (p *Part) GetTenantID() uuid.UUID { return p.TenantID }

// SetTenantID stamps the owning tenant id
func (p *Part) SetTenantID(id uuid.UUID) { p.TenantID = id }
