package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/models"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(&models.Customer{}, &models.Vehicle{}, &models.Part{})
	require.NoError(t, err, "Failed to migrate test database")

	s, err := New(db)
	require.NoError(t, err, "Failed to create store")
	return s
}

func TestQueryRefusesWithoutTenant(t *testing.T) {
	s := setupTestStore(t)

	_, err := Query[models.Customer](s, nil, QueryOptions{})
	assert.ErrorIs(t, err, ErrNoTenant, "Query without a tenant id must not execute")

	err = Create[models.Customer](s, nil, &models.Customer{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrNoTenant)

	_, err = Update[models.Customer](s, nil, uuid.New(), map[string]interface{}{"first_name": "X"})
	assert.ErrorIs(t, err, ErrNoTenant)

	err = Delete[models.Customer](s, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoTenant)

	// And nothing was written while the tenant id was missing
	var count int64
	s.DB().Model(&models.Customer{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateStampsTenantID(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()
	foreignID := uuid.New()

	// The payload claims a different tenant; the stamp must win
	customer := models.Customer{TenantID: foreignID, FirstName: "Maya", LastName: "Ortiz"}
	err := Create[models.Customer](s, &tenantID, &customer)
	require.NoError(t, err)

	assert.Equal(t, tenantID, customer.TenantID, "Create must stamp the caller's tenant id over the payload")

	var saved models.Customer
	require.NoError(t, s.DB().First(&saved, "id = ?", customer.ID).Error)
	assert.Equal(t, tenantID, saved.TenantID)
}

func TestQueryIsTenantScoped(t *testing.T) {
	s := setupTestStore(t)
	tenantX := uuid.New()
	tenantY := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, Create[models.Customer](s, &tenantX, &models.Customer{FirstName: "X", LastName: "Customer"}))
	}
	require.NoError(t, Create[models.Customer](s, &tenantY, &models.Customer{FirstName: "Y", LastName: "Customer"}))

	res, err := Query[models.Customer](s, &tenantX, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)
	for _, c := range res.Rows {
		assert.Equal(t, tenantX, c.TenantID, "Query must only return the caller's rows")
	}

	res, err = Query[models.Customer](s, &tenantY, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
}

func TestQueryFiltersOrderingPagination(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()

	names := []string{"Anders", "Briggs", "Chen", "Dukes", "Ellis"}
	for i, n := range names {
		part := models.Part{Name: n, Stock: i, UnitPrice: float64(i) * 10}
		require.NoError(t, Create[models.Part](s, &tenantID, &part))
	}

	// Ascending order by name, page 2 of size 2
	res, err := Query[models.Part](s, &tenantID, QueryOptions{
		OrderBy:  "name",
		OrderDir: "asc",
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Count, "Count should be unpaginated")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Chen", res.Rows[0].Name)
	assert.Equal(t, "Dukes", res.Rows[1].Name)

	// Equality filter
	res, err = Query[models.Part](s, &tenantID, QueryOptions{
		Filters: map[string]interface{}{"name": "Ellis"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)

	// Hostile column names are rejected before reaching the database
	_, err = Query[models.Part](s, &tenantID, QueryOptions{
		Filters: map[string]interface{}{"name; DROP TABLE parts": "x"},
	})
	assert.Error(t, err)

	_, err = Query[models.Part](s, &tenantID, QueryOptions{OrderBy: "name; --"})
	assert.Error(t, err)
}

func TestCrossTenantUpdateBlocked(t *testing.T) {
	s := setupTestStore(t)
	tenantX := uuid.New()
	tenantY := uuid.New()

	vehicle := models.Vehicle{CustomerID: uuid.New(), Plate: "AB-123-CD", Make: "Toyota"}
	require.NoError(t, Create[models.Vehicle](s, &tenantX, &vehicle))

	// Tenant Y supplies tenant X's row id; zero rows may be touched
	_, err := Update[models.Vehicle](s, &tenantY, vehicle.ID, map[string]interface{}{"make": "Hacked"})
	assert.ErrorIs(t, err, ErrNotFound, "Cross-tenant update must affect zero rows")

	var saved models.Vehicle
	require.NoError(t, s.DB().First(&saved, "id = ?", vehicle.ID).Error)
	assert.Equal(t, "Toyota", saved.Make, "The foreign tenant's row must be untouched")
}

func TestCrossTenantDeleteBlocked(t *testing.T) {
	s := setupTestStore(t)
	tenantX := uuid.New()
	tenantY := uuid.New()

	part := models.Part{Name: "Alternator", Stock: 4}
	require.NoError(t, Create[models.Part](s, &tenantX, &part))

	err := Delete[models.Part](s, &tenantY, part.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	s.DB().Model(&models.Part{}).Where("id = ?", part.ID).Count(&count)
	assert.Equal(t, int64(1), count, "The row must survive a foreign tenant's delete")
}

func TestUpdateReturnsFreshRow(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()

	customer := models.Customer{FirstName: "Ana", LastName: "Silva"}
	require.NoError(t, Create[models.Customer](s, &tenantID, &customer))

	updated, err := Update[models.Customer](s, &tenantID, customer.ID, map[string]interface{}{"phone": "555-0101"})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, customer.ID, updated.ID)
}

func TestGetNotFoundDistinctFromError(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()

	_, err := Get[models.Customer](s, &tenantID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheInvalidatedOnWrite(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()

	require.NoError(t, Create[models.Part](s, &tenantID, &models.Part{Name: "Spark plug", Stock: 10}))

	res, err := Query[models.Part](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	s.Wait()

	// A write to the table must make the next query observe the change
	require.NoError(t, Create[models.Part](s, &tenantID, &models.Part{Name: "Air filter", Stock: 3}))

	res, err = Query[models.Part](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count, "No stale cached read may survive a write")

	// Same after update and delete
	partID := res.Rows[0].ID
	_, err = Update[models.Part](s, &tenantID, partID, map[string]interface{}{"stock": 99})
	require.NoError(t, err)

	res, err = Query[models.Part](s, &tenantID, QueryOptions{Filters: map[string]interface{}{"stock": 99}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)

	require.NoError(t, Delete[models.Part](s, &tenantID, partID))
	res, err = Query[models.Part](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
}

func TestCachedReadServedWithoutDatabase(t *testing.T) {
	s := setupTestStore(t)
	tenantID := uuid.New()

	require.NoError(t, Create[models.Customer](s, &tenantID, &models.Customer{FirstName: "Leo", LastName: "Park"}))

	res1, err := Query[models.Customer](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	s.Wait()

	// Sneak a row in behind the store's back; the cached page must still be
	// served until something goes through the write helpers
	s.DB().Create(&models.Customer{TenantID: tenantID, FirstName: "Ghost", LastName: "Row"})

	res2, err := Query[models.Customer](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, res1.Count, res2.Count, "Identical query should be served from cache")

	// Invalidate explicitly, as transactional writers do
	s.Invalidate(models.Customer{}.TableName())
	res3, err := Query[models.Customer](s, &tenantID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, res1.Count+1, res3.Count)
}
