package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle represents a customer vehicle serviced by the shop
type Vehicle struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CustomerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Plate      string         `gorm:"not null" json:"plate"`
	Make       string         `json:"make"`
	Model      string         `json:"model"`
	Year       int            `json:"year"`
	VIN        string         `json:"vin"`
	Mileage    int            `json:"mileage"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// GetTenantID returns the owning tenant id
func (v *Vehicle) GetTenantID() uuid.UUID { return v.TenantID }

// SetTenantID stamps the owning tenant id
func (v *Vehicle) SetTenantID(id uuid.UUID) { v.TenantID = id }
