package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pitstop-crm/pitstop-api/config"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/services"
	"github.com/pitstop-crm/pitstop-api/store"
)

// TestPassword is the password every fixture account is created with
const TestPassword = "test-password-123"

// OpenTestDatabase opens an isolated in-memory database with the full
// schema and registers it as the process database
func OpenTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.UserProfile{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Service{},
		&models.ServicePart{},
		&models.Part{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	config.SetDB(db)
	return db
}

// InitTestServices stands up the auth service and tenant-scoped store over
// the given database and registers them as the process instances
func InitTestServices(t *testing.T, db *gorm.DB) *services.AuthService {
	t.Helper()

	auth := services.NewAuthService(db, &config.Config{
		JWTSecret: "integration-test-secret",
		JWTExpiry: time.Hour,
	})
	t.Cleanup(auth.Close)
	services.SetAuthService(auth)

	s, err := store.New(db)
	require.NoError(t, err, "failed to create test store")
	store.SetStore(s)

	services.SetStorageService(services.NewMockStorageService())

	gin.SetMode(gin.TestMode)
	return auth
}

// CreateTestTenant inserts a shop fixture
func CreateTestTenant(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// CreateTestUser inserts an active profile fixture with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, email, role string, tenantID *uuid.UUID) *models.UserProfile {
	t.Helper()

	hash, err := services.HashPassword(TestPassword)
	require.NoError(t, err)

	user := &models.UserProfile{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.StatusActive,
		TenantID:     tenantID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SignInAs signs the user in through the auth service and returns a live
// session token
func SignInAs(t *testing.T, email string) string {
	t.Helper()

	token, _, err := services.GetAuthService().SignIn(email, TestPassword)
	require.NoError(t, err, "fixture sign-in failed for %s", email)
	return token
}
