package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitstop-crm/pitstop-api/models"
)

func customerRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	g := router.Group("/customers", mw)
	g.GET("", ListCustomers)
	g.GET("/:id", GetCustomer)
	g.POST("", CreateCustomer)
	g.PUT("/:id", UpdateCustomer)
	g.DELETE("/:id", DeleteCustomer)
	return router
}

func TestCreateCustomerStampsTenant(t *testing.T) {
	_, tenant := setupControllerTest(t)
	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodPost, "/customers", gin.H{
		"first_name": "Ada",
		"last_name":  "Velez",
		"tenant_id":  "11111111-1111-1111-1111-111111111111", // hostile payload
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var customer models.Customer
	decodeEnvelope(t, w, &customer)
	assert.Equal(t, tenant.ID, customer.TenantID, "tenant stamp must override the payload")
	assert.Equal(t, "Ada", customer.FirstName)
}

func TestCreateCustomerValidation(t *testing.T) {
	_, tenant := setupControllerTest(t)
	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodPost, "/customers", gin.H{"first_name": "NoLastName"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", responseErrorCode(t, w))
}

func TestGetCustomerCrossTenantHidden(t *testing.T) {
	db, tenant := setupControllerTest(t)

	other := models.Tenant{Name: "other-shop"}
	require.NoError(t, db.Create(&other).Error)
	foreign := models.Customer{TenantID: other.ID, FirstName: "Priv", LastName: "Ate"}
	require.NoError(t, db.Create(&foreign).Error)

	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodGet, "/customers/"+foreign.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "foreign rows must be indistinguishable from missing ones")
	assert.Equal(t, "CUSTOMER_NOT_FOUND", responseErrorCode(t, w))
}

func TestUpdateCustomerPartial(t *testing.T) {
	db, tenant := setupControllerTest(t)
	customer := models.Customer{TenantID: tenant.ID, FirstName: "Old", LastName: "Name", Phone: "555-1"}
	require.NoError(t, db.Create(&customer).Error)

	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodPut, "/customers/"+customer.ID.String(), gin.H{"phone": "555-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Customer
	decodeEnvelope(t, w, &updated)
	assert.Equal(t, "555-2", updated.Phone)
	assert.Equal(t, "Old", updated.FirstName, "untouched fields keep their values")
}

func TestDeleteCustomer(t *testing.T) {
	db, tenant := setupControllerTest(t)
	customer := models.Customer{TenantID: tenant.ID, FirstName: "Bye", LastName: "Now"}
	require.NoError(t, db.Create(&customer).Error)

	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodDelete, "/customers/"+customer.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Customer{}).Where("id = ?", customer.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCustomerInvalidIDParam(t *testing.T) {
	_, tenant := setupControllerTest(t)
	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodGet, "/customers/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", responseErrorCode(t, w))
}

func TestListCustomersPaginated(t *testing.T) {
	db, tenant := setupControllerTest(t)
	for i := 0; i < 15; i++ {
		c := models.Customer{TenantID: tenant.ID, FirstName: "C", LastName: string(rune('a' + i))}
		require.NoError(t, db.Create(&c).Error)
	}

	router := customerRouter(asTenant(tenant.ID, nil))

	w := doJSON(router, http.MethodGet, "/customers?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var customers []models.Customer
	decodeEnvelope(t, w, &customers)
	assert.Len(t, customers, 5, "page 2 of 15 rows at limit 10 holds 5")
}

func TestListCustomersWithoutTenantContext(t *testing.T) {
	setupControllerTest(t)
	router := customerRouter(func(c *gin.Context) { c.Next() }) // guard chain skipped

	w := doJSON(router, http.MethodGet, "/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", responseErrorCode(t, w))
}
