package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service statuses
const (
	ServiceWaiting    = "waiting"
	ServiceInProgress = "in_progress"
	ServiceCompleted  = "completed"
	ServiceDelivered  = "delivered"
	ServiceCancelled  = "cancelled"
)

// ServiceStatuses lists every valid service-order status
var ServiceStatuses = []string{
	ServiceWaiting,
	ServiceInProgress,
	ServiceCompleted,
	ServiceDelivered,
	ServiceCancelled,
}

// IsValidServiceStatus reports whether s is one of the known statuses
func IsValidServiceStatus(s string) bool {
	for _, v := range ServiceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Service represents one service order on a vehicle.
//
// Cost invariant: PartsCost is the sum of quantity*unit_price over the
// order's parts and TotalCost = LaborCost + PartsCost. Both are recomputed
// in the same transaction as every part add/remove/update.
type Service struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	VehicleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle      *Vehicle       `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer     *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TechnicianID *uuid.UUID     `gorm:"type:uuid;index" json:"technician_id"` // nullable, assigned when work starts
	Technician   *UserProfile   `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Status       string         `gorm:"not null;default:'waiting'" json:"status"` // waiting, in_progress, completed, delivered, cancelled
	LaborCost    float64        `gorm:"type:decimal(10,2);default:0" json:"labor_cost"`
	PartsCost    float64        `gorm:"type:decimal(10,2);default:0" json:"parts_cost"`
	TotalCost    float64        `gorm:"type:decimal(10,2);default:0" json:"total_cost"`
	Parts        []ServicePart  `gorm:"foreignKey:ServiceID" json:"parts,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// RecalculateCosts recomputes PartsCost from the loaded parts slice and
// refreshes TotalCost from it
func (s *Service) RecalculateCosts() {
	var partsCost float64
	for _, p := range s.Parts {
		partsCost += float64(p.Quantity) * p.UnitPrice
	}
	s.PartsCost = partsCost
	s.TotalCost = s.LaborCost + s.PartsCost
}

// ServicePart is a line item on a service order. When PartID is set the
// line is backed by an inventory part and stock is adjusted on add/remove.
type ServicePart struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ServiceID uuid.UUID      `gorm:"type:uuid;not null;index" json:"service_id"`
	PartID    *uuid.UUID     `gorm:"type:uuid;index" json:"part_id"` // nullable, link to the parts inventory
	Name      string         `gorm:"not null" json:"name"`
	Quantity  int            `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice float64        `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ServicePart model
func (ServicePart) TableName() string {
	return "service_parts"
}

// BeforeCreate assigns a UUID when one was not supplied by the caller
func (p *ServicePart) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// GetTenantID returns the owning tenant id
func (s *Service) GetTenantID() uuid.UUID { return s.TenantID }

// SetTenantID stamps the owning tenant id
func (s *Service) SetTenantID(id uuid.UUID) { s.TenantID = id }

// GetTenantID returns the owning tenant id
func (p *ServicePart) GetTenantID() uuid.UUID { return p.TenantID }

// SetTenantID stamps the owning tenant id
func (p *ServicePart) SetTenantID(id uuid.UUID) { p.TenantID = id }
