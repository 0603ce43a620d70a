package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/store"
)

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"omitempty"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address" binding:"omitempty"`
	Notes     string `json:"notes" binding:"omitempty"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"omitempty"`
	LastName  string `json:"last_name" binding:"omitempty"`
	Phone     string `json:"phone" binding:"omitempty"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address" binding:"omitempty"`
	Notes     string `json:"notes" binding:"omitempty"`
}

// ListCustomers handles GET /api/v1/customers - lists the shop's customers
func ListCustomers(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	res, err := store.Query[models.Customer](store.GetStore(), tenantID, store.QueryOptions{
		OrderBy:  c.DefaultQuery("sort", "created_at"),
		OrderDir: c.DefaultQuery("dir", "desc"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       res.Rows,
		"pagination": paginationBlock(page, limit, res.Count),
	})
}

// GetCustomer handles GET /api/v1/customers/:id
func GetCustomer(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	customer, err := store.Get[models.Customer](store.GetStore(), tenantID, id)
	if err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
}

// CreateCustomer handles POST /api/v1/customers
func CreateCustomer(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customer := models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	if err := store.Create(store.GetStore(), tenantID, &customer); err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": customer})
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func UpdateCustomer(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) == 0 {
		customer, err := store.Get[models.Customer](store.GetStore(), tenantID, id)
		if err != nil {
			respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
		return
	}

	customer, err := store.Update[models.Customer](store.GetStore(), tenantID, id, updates)
	if err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func DeleteCustomer(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := store.Delete[models.Customer](store.GetStore(), tenantID, id); err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer deleted"})
}
