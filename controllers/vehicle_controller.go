package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/store"
)

// CreateVehicleRequest represents the request body for registering a vehicle
type CreateVehicleRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Plate      string `json:"plate" binding:"required"`
	Make       string `json:"make" binding:"omitempty"`
	Model      string `json:"model" binding:"omitempty"`
	Year       int    `json:"year" binding:"omitempty"`
	VIN        string `json:"vin" binding:"omitempty"`
	Mileage    int    `json:"mileage" binding:"omitempty,min=0"`
	Notes      string `json:"notes" binding:"omitempty"`
}

// UpdateVehicleRequest represents the request body for updating a vehicle
type UpdateVehicleRequest struct {
	Plate   string `json:"plate" binding:"omitempty"`
	Make    string `json:"make" binding:"omitempty"`
	Model   string `json:"model" binding:"omitempty"`
	Year    int    `json:"year" binding:"omitempty"`
	VIN     string `json:"vin" binding:"omitempty"`
	Mileage int    `json:"mileage" binding:"omitempty,min=0"`
	Notes   string `json:"notes" binding:"omitempty"`
}

// ListVehicles handles GET /api/v1/vehicles, optionally filtered by
// ?customer_id
func ListVehicles(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	filters := map[string]interface{}{}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ID",
					"message": "customer_id must be a valid UUID",
				},
			})
			return
		}
		filters["customer_id"] = customerID
	}

	page, limit := parsePagination(c)
	res, err := store.Query[models.Vehicle](store.GetStore(), tenantID, store.QueryOptions{
		Filters:  filters,
		OrderBy:  c.DefaultQuery("sort", "created_at"),
		OrderDir: c.DefaultQuery("dir", "desc"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       res.Rows,
		"pagination": paginationBlock(page, limit, res.Count),
	})
}

// GetVehicle handles GET /api/v1/vehicles/:id
func GetVehicle(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	vehicle, err := store.Get[models.Vehicle](store.GetStore(), tenantID, id)
	if err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": vehicle})
}

// CreateVehicle handles POST /api/v1/vehicles. The owning customer must
// already exist inside the caller's shop.
func CreateVehicle(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	if _, err := store.Get[models.Customer](store.GetStore(), tenantID, customerID); err != nil {
		respondStoreError(c, err, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	vehicle := models.Vehicle{
		CustomerID: customerID,
		Plate:      req.Plate,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		VIN:        req.VIN,
		Mileage:    req.Mileage,
		Notes:      req.Notes,
	}
	if err := store.Create(store.GetStore(), tenantID, &vehicle); err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": vehicle})
}

// UpdateVehicle handles PUT /api/v1/vehicles/:id
func UpdateVehicle(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Plate != "" {
		updates["plate"] = req.Plate
	}
	if req.Make != "" {
		updates["make"] = req.Make
	}
	if req.Model != "" {
		updates["model"] = req.Model
	}
	if req.Year != 0 {
		updates["year"] = req.Year
	}
	if req.VIN != "" {
		updates["vin"] = req.VIN
	}
	if req.Mileage != 0 {
		updates["mileage"] = req.Mileage
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) == 0 {
		vehicle, err := store.Get[models.Vehicle](store.GetStore(), tenantID, id)
		if err != nil {
			respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": vehicle})
		return
	}

	vehicle, err := store.Update[models.Vehicle](store.GetStore(), tenantID, id, updates)
	if err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": vehicle})
}

// DeleteVehicle handles DELETE /api/v1/vehicles/:id
func DeleteVehicle(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := store.Delete[models.Vehicle](store.GetStore(), tenantID, id); err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vehicle deleted"})
}
