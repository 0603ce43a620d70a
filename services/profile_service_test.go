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

func setupProfileTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(&models.Tenant{}, &models.UserProfile{})
	require.NoError(t, err, "Failed to migrate test database")
	return db
}

func TestResolveProfileWithTenantJoin(t *testing.T) {
	db := setupProfileTest(t)

	tenant := models.Tenant{Name: "Northside Garage", Phone: "555-0100"}
	require.NoError(t, db.Create(&tenant).Error)

	profile := models.UserProfile{
		FirstName:    "Iris",
		LastName:     "Vance",
		Email:        "iris@northside.example",
		PasswordHash: "x",
		Role:         models.RoleConsultant,
		TenantID:     &tenant.ID,
	}
	require.NoError(t, db.Create(&profile).Error)

	resolved, err := ResolveProfile(db, profile.ID.String())
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, profile.Email, resolved.Email)
	require.NotNil(t, resolved.Tenant, "Tenant should be joined in the same read")
	assert.Equal(t, "Northside Garage", resolved.Tenant.Name)

	tenantID := TenantID(resolved)
	require.NotNil(t, tenantID)
	assert.Equal(t, tenant.ID, *tenantID)
}

func TestResolveProfileNotFoundIsNil(t *testing.T) {
	db := setupProfileTest(t)

	resolved, err := ResolveProfile(db, uuid.NewString())
	assert.NoError(t, err, "A missing profile is not an error")
	assert.Nil(t, resolved)
}

func TestResolveProfileMalformedSubject(t *testing.T) {
	db := setupProfileTest(t)

	resolved, err := ResolveProfile(db, "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestTenantIDNilSafety(t *testing.T) {
	assert.Nil(t, TenantID(nil), "No profile means no tenant")
	assert.Nil(t, TenantID(&models.UserProfile{}), "No membership means no tenant")
}
