package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/store"
)

// CreatePartRequest represents the request body for stocking a new part
type CreatePartRequest struct {
	Name      string  `json:"name" binding:"required"`
	SKU       string  `json:"sku" binding:"omitempty"`
	Stock     int     `json:"stock" binding:"omitempty,min=0"`
	UnitPrice float64 `json:"unit_price" binding:"omitempty,min=0"`
	MinStock  int     `json:"min_stock" binding:"omitempty,min=0"`
}

// UpdatePartRequest represents the request body for updating a part.
// Pointer fields distinguish "not sent" from an explicit zero, since stock
// and price legitimately go to 0.
type UpdatePartRequest struct {
	Name      *string  `json:"name" binding:"omitempty"`
	SKU       *string  `json:"sku" binding:"omitempty"`
	Stock     *int     `json:"stock" binding:"omitempty,min=0"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,min=0"`
	MinStock  *int     `json:"min_stock" binding:"omitempty,min=0"`
}

// ListParts handles GET /api/v1/parts - the shop's inventory screen
func ListParts(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	res, err := store.Query[models.Part](store.GetStore(), tenantID, store.QueryOptions{
		OrderBy:  c.DefaultQuery("sort", "name"),
		OrderDir: c.DefaultQuery("dir", "asc"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       res.Rows,
		"pagination": paginationBlock(page, limit, res.Count),
	})
}

// GetPart handles GET /api/v1/parts/:id
func GetPart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	part, err := store.Get[models.Part](store.GetStore(), tenantID, id)
	if err != nil {
		respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": part})
}

// CreatePart handles POST /api/v1/parts
func CreatePart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	part := models.Part{
		Name:      req.Name,
		SKU:       req.SKU,
		Stock:     req.Stock,
		UnitPrice: req.UnitPrice,
		MinStock:  req.MinStock,
	}
	if err := store.Create(store.GetStore(), tenantID, &part); err != nil {
		respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": part})
}

// UpdatePart handles PUT /api/v1/parts/:id
func UpdatePart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.MinStock != nil {
		updates["min_stock"] = *req.MinStock
	}

	if len(updates) == 0 {
		part, err := store.Get[models.Part](store.GetStore(), tenantID, id)
		if err != nil {
			respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": part})
		return
	}

	part, err := store.Update[models.Part](store.GetStore(), tenantID, id, updates)
	if err != nil {
		respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": part})
}

// DeletePart handles DELETE /api/v1/parts/:id
func DeletePart(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := store.Delete[models.Part](store.GetStore(), tenantID, id); err != nil {
		respondStoreError(c, err, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Part deleted"})
}
