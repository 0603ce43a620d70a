package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/store"
)

// serviceTransitions lists the allowed status moves. Terminal statuses
// (delivered, cancelled) have no outgoing edges.
var serviceTransitions = map[string][]string{
	models.ServiceWaiting:    {models.ServiceInProgress, models.ServiceCancelled},
	models.ServiceInProgress: {models.ServiceCompleted, models.ServiceCancelled},
	models.ServiceCompleted:  {models.ServiceDelivered, models.ServiceInProgress},
	models.ServiceDelivered:  {},
	models.ServiceCancelled:  {},
}

func canTransition(from, to string) bool {
	for _, next := range serviceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateServiceRequest represents the request body for opening a service order
type CreateServiceRequest struct {
	VehicleID    string  `json:"vehicle_id" binding:"required,uuid"`
	TechnicianID string  `json:"technician_id" binding:"omitempty,uuid"`
	Description  string  `json:"description" binding:"required"`
	LaborCost    float64 `json:"labor_cost" binding:"omitempty,min=0"`
}

// UpdateServiceRequest represents the request body for updating a service order
type UpdateServiceRequest struct {
	TechnicianID string   `json:"technician_id" binding:"omitempty,uuid"`
	Description  string   `json:"description" binding:"omitempty"`
	Status       string   `json:"status" binding:"omitempty"`
	LaborCost    *float64 `json:"labor_cost" binding:"omitempty,min=0"`
}

// AddServicePartRequest represents one part line added to a service order.
// When part_id is present the line draws from inventory and stock is
// decremented; name and unit_price then default to the inventory part's.
type AddServicePartRequest struct {
	PartID    string   `json:"part_id" binding:"omitempty,uuid"`
	Name      string   `json:"name" binding:"omitempty"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,min=0"`
}

// ListServices handles GET /api/v1/services with optional ?status,
// ?customer_id, ?vehicle_id and ?technician_id filters
func ListServices(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	filters := map[string]interface{}{}
	if status := c.Query("status"); status != "" {
		if !models.IsValidServiceStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": fmt.Sprintf("Unknown service status %q", status),
				},
			})
			return
		}
		filters["status"] = status
	}
	for _, column := range []string{"customer_id", "vehicle_id", "technician_id"} {
		raw := c.Query(column)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ID",
					"message": fmt.Sprintf("%s must be a valid UUID", column),
				},
			})
			return
		}
		filters[column] = id
	}

	page, limit := parsePagination(c)
	res, err := store.Query[models.Service](store.GetStore(), tenantID, store.QueryOptions{
		Filters:  filters,
		OrderBy:  c.DefaultQuery("sort", "created_at"),
		OrderDir: c.DefaultQuery("dir", "desc"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       res.Rows,
		"pagination": paginationBlock(page, limit, res.Count),
	})
}

// GetService handles GET /api/v1/services/:id, returning the order with its
// customer, vehicle, technician and part lines
func GetService(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var service models.Service
	err := store.GetStore().DB().
		Preload("Customer").
		Preload("Vehicle").
		Preload("Technician").
		Preload("Parts").
		First(&service, "id = ? AND tenant_id = ?", id, *tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondStoreError(c, store.ErrNotFound, "SERVICE_NOT_FOUND", "Service order not found")
			return
		}
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": service})
}

// CreateService handles POST /api/v1/services. The vehicle must belong to
// the caller's shop; the order's customer is taken from the vehicle.
func CreateService(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	vehicle, err := store.Get[models.Vehicle](store.GetStore(), tenantID, vehicleID)
	if err != nil {
		respondStoreError(c, err, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	service := models.Service{
		VehicleID:   vehicle.ID,
		CustomerID:  vehicle.CustomerID,
		Description: req.Description,
		Status:      models.ServiceWaiting,
		LaborCost:   req.LaborCost,
		TotalCost:   req.LaborCost,
	}

	if req.TechnicianID != "" {
		techID, ok := resolveTechnician(c, tenantID, req.TechnicianID)
		if !ok {
			return
		}
		service.TechnicianID = techID
	}

	if err := store.Create(store.GetStore(), tenantID, &service); err != nil {
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": service})
}

// UpdateService handles PUT /api/v1/services/:id. Status changes must follow
// the transition graph; a labor cost change refreshes the order total.
func UpdateService(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	service, err := store.Get[models.Service](store.GetStore(), tenantID, id)
	if err != nil {
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	updates := make(map[string]interface{})
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TechnicianID != "" {
		techID, ok := resolveTechnician(c, tenantID, req.TechnicianID)
		if !ok {
			return
		}
		updates["technician_id"] = *techID
	}
	if req.Status != "" && req.Status != service.Status {
		if !models.IsValidServiceStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": fmt.Sprintf("Unknown service status %q", req.Status),
				},
			})
			return
		}
		if !canTransition(service.Status, req.Status) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": fmt.Sprintf("Cannot move a %s order to %s", service.Status, req.Status),
				},
			})
			return
		}
		updates["status"] = req.Status
	}
	if req.LaborCost != nil {
		updates["labor_cost"] = *req.LaborCost
		updates["total_cost"] = *req.LaborCost + service.PartsCost
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": service})
		return
	}

	updated, err := store.Update[models.Service](store.GetStore(), tenantID, id, updates)
	if err != nil {
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteService handles DELETE /api/v1/services/:id
func DeleteService(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := store.Delete[models.Service](store.GetStore(), tenantID, id); err != nil {
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Service order deleted"})
}

// AddServicePart handles POST /api/v1/services/:id/parts. The part line, the
// inventory decrement and the cost recomputation commit in one transaction,
// so the order totals never drift from the part lines.
func AddServicePart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddServicePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.PartID == "" && (req.Name == "" || req.UnitPrice == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A part line needs either a part_id or a name and unit_price",
			},
		})
		return
	}

	s := store.GetStore()
	var updated models.Service
	err := s.DB().Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.Preload("Parts").
			First(&service, "id = ? AND tenant_id = ?", serviceID, *tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		line := models.ServicePart{
			TenantID:  *tenantID,
			ServiceID: service.ID,
			Name:      req.Name,
			Quantity:  req.Quantity,
		}
		if req.UnitPrice != nil {
			line.UnitPrice = *req.UnitPrice
		}

		if req.PartID != "" {
			partID, err := uuid.Parse(req.PartID)
			if err != nil {
				return errInvalidPartID
			}
			var part models.Part
			if err := tx.First(&part, "id = ? AND tenant_id = ?", partID, *tenantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errPartNotFound
				}
				return err
			}
			if part.Stock < req.Quantity {
				return errInsufficientStock
			}
			res := tx.Model(&models.Part{}).
				Where("id = ? AND tenant_id = ? AND stock >= ?", part.ID, *tenantID, req.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", req.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errInsufficientStock
			}
			line.PartID = &part.ID
			if line.Name == "" {
				line.Name = part.Name
			}
			if req.UnitPrice == nil {
				line.UnitPrice = part.UnitPrice
			}
		}

		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		service.Parts = append(service.Parts, line)
		service.RecalculateCosts()
		if err := tx.Model(&service).Updates(map[string]interface{}{
			"parts_cost": service.PartsCost,
			"total_cost": service.TotalCost,
		}).Error; err != nil {
			return err
		}

		updated = service
		return nil
	})
	if err != nil {
		respondServicePartError(c, err)
		return
	}

	s.Invalidate(models.Service{}.TableName())
	s.Invalidate(models.ServicePart{}.TableName())
	s.Invalidate(models.Part{}.TableName())

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": updated})
}

// RemoveServicePart handles DELETE /api/v1/services/:id/parts/:partId.
// Inventory-backed lines return their quantity to stock; the order totals
// are recomputed in the same transaction.
func RemoveServicePart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("partId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "partId must be a valid UUID",
			},
		})
		return
	}

	s := store.GetStore()
	var updated models.Service
	txErr := s.DB().Transaction(func(tx *gorm.DB) error {
		var line models.ServicePart
		if err := tx.First(&line,
			"id = ? AND service_id = ? AND tenant_id = ?", lineID, serviceID, *tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		if line.PartID != nil {
			if err := tx.Model(&models.Part{}).
				Where("id = ? AND tenant_id = ?", *line.PartID, *tenantID).
				UpdateColumn("stock", gorm.Expr("stock + ?", line.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&line).Error; err != nil {
			return err
		}

		var service models.Service
		if err := tx.Preload("Parts").
			First(&service, "id = ? AND tenant_id = ?", serviceID, *tenantID).Error; err != nil {
			return err
		}
		service.RecalculateCosts()
		if err := tx.Model(&service).Updates(map[string]interface{}{
			"parts_cost": service.PartsCost,
			"total_cost": service.TotalCost,
		}).Error; err != nil {
			return err
		}

		updated = service
		return nil
	})
	if txErr != nil {
		respondServicePartError(c, txErr)
		return
	}

	s.Invalidate(models.Service{}.TableName())
	s.Invalidate(models.ServicePart{}.TableName())
	s.Invalidate(models.Part{}.TableName())

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

var (
	errInvalidPartID     = errors.New("part_id must be a valid UUID")
	errPartNotFound      = errors.New("inventory part not found")
	errInsufficientStock = errors.New("not enough stock for this part")
)

func respondServicePartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidPartID):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": errInvalidPartID.Error(),
			},
		})
	case errors.Is(err, errPartNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PART_NOT_FOUND",
				"message": "Part not found",
			},
		})
	case errors.Is(err, errInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INSUFFICIENT_STOCK",
				"message": errInsufficientStock.Error(),
			},
		})
	default:
		respondStoreError(c, err, "SERVICE_NOT_FOUND", "Service order not found")
	}
}

// resolveTechnician checks that the id names an active technician inside the
// caller's shop, answering the request itself when it does not
func resolveTechnician(c *gin.Context, tenantID *uuid.UUID, raw string) (*uuid.UUID, bool) {
	techID, err := uuid.Parse(raw)
	if err != nil {
		respondValidationError(c, err)
		return nil, false
	}

	var tech models.UserProfile
	err = store.GetStore().DB().
		First(&tech, "id = ? AND tenant_id = ? AND role = ?", techID, *tenantID, models.RoleTechnician).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_NOT_FOUND",
					"message": "Technician not found in this shop",
				},
			})
			return nil, false
		}
		respondStoreError(c, err, "TECHNICIAN_NOT_FOUND", "Technician not found in this shop")
		return nil, false
	}

	return &tech.ID, true
}
