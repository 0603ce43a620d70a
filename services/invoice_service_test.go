package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/models"
)

func setupInvoiceTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Service{},
		&models.ServicePart{},
	)
	require.NoError(t, err, "Failed to migrate test database")
	return db
}

func TestRenderInvoice(t *testing.T) {
	db := setupInvoiceTest(t)

	tenant := models.Tenant{Name: "Westgate Motors", Address: "12 Shop Ln", Phone: "555-0142", Email: "hello@westgate.example"}
	require.NoError(t, db.Create(&tenant).Error)

	customer := models.Customer{TenantID: tenant.ID, FirstName: "Noor", LastName: "Haddad"}
	require.NoError(t, db.Create(&customer).Error)

	vehicle := models.Vehicle{TenantID: tenant.ID, CustomerID: customer.ID, Plate: "XY-99-ZZ", Make: "Honda", Model: "Civic"}
	require.NoError(t, db.Create(&vehicle).Error)

	svc := models.Service{
		TenantID:    tenant.ID,
		VehicleID:   vehicle.ID,
		CustomerID:  customer.ID,
		Description: "Front brake overhaul",
		Status:      models.ServiceCompleted,
		LaborCost:   500,
		PartsCost:   600,
		TotalCost:   1100,
	}
	require.NoError(t, db.Create(&svc).Error)

	parts := []models.ServicePart{
		{TenantID: tenant.ID, ServiceID: svc.ID, Name: "Brake pads", Quantity: 2, UnitPrice: 150},
		{TenantID: tenant.ID, ServiceID: svc.ID, Name: "Rotor", Quantity: 1, UnitPrice: 300},
	}
	for i := range parts {
		require.NoError(t, db.Create(&parts[i]).Error)
	}

	html, err := RenderInvoice(db, tenant.ID, svc.ID)
	require.NoError(t, err)

	assert.Contains(t, html, "Westgate Motors")
	assert.Contains(t, html, "Noor Haddad")
	assert.Contains(t, html, "Honda Civic")
	assert.Contains(t, html, "Brake pads")
	assert.Contains(t, html, "300.00", "Pads line amount should be rendered")
	assert.Contains(t, html, "600.00", "Parts subtotal should be rendered")
	assert.Contains(t, html, "1100.00", "Total should be rendered")
}

func TestRenderInvoiceNotFound(t *testing.T) {
	db := setupInvoiceTest(t)

	tenant := models.Tenant{Name: "Westgate Motors"}
	require.NoError(t, db.Create(&tenant).Error)

	_, err := RenderInvoice(db, tenant.ID, uuid.New())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestRenderInvoiceCrossTenantHidden(t *testing.T) {
	db := setupInvoiceTest(t)

	tenantX := models.Tenant{Name: "Shop X"}
	tenantY := models.Tenant{Name: "Shop Y"}
	require.NoError(t, db.Create(&tenantX).Error)
	require.NoError(t, db.Create(&tenantY).Error)

	customer := models.Customer{TenantID: tenantX.ID, FirstName: "A", LastName: "B"}
	require.NoError(t, db.Create(&customer).Error)
	vehicle := models.Vehicle{TenantID: tenantX.ID, CustomerID: customer.ID, Plate: "P"}
	require.NoError(t, db.Create(&vehicle).Error)

	svc := models.Service{TenantID: tenantX.ID, VehicleID: vehicle.ID, CustomerID: customer.ID, Description: "Oil change"}
	require.NoError(t, db.Create(&svc).Error)

	// Tenant Y must not be able to render tenant X's invoice
	_, err := RenderInvoice(db, tenantY.ID, svc.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
