package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop-crm/pitstop-api/middleware"
	"github.com/pitstop-crm/pitstop-api/store"
)

// requireTenantID pulls the active tenant id from the context, answering
// the request itself when the guard chain did not run
func requireTenantID(c *gin.Context) (*uuid.UUID, bool) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Could not extract tenant information",
			},
		})
		return nil, false
	}
	return tenantID, true
}

// respondValidationError answers a request whose body failed binding
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// parsePagination reads ?page and ?limit with the defaults every list
// screen uses
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// paginationBlock builds the pagination envelope returned alongside lists
func paginationBlock(page, limit int, total int64) gin.H {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	if totalPages < 1 {
		totalPages = 1
	}
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}

// parseIDParam parses the :id route parameter as a UUID, answering the
// request itself on failure
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "ID must be a valid UUID",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondStoreError translates a store failure into the JSON envelope.
// notFoundCode and notFoundMessage name the entity for 404s.
func respondStoreError(c *gin.Context, err error, notFoundCode, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    notFoundCode,
				"message": notFoundMessage,
			},
		})
	case errors.Is(err, store.ErrNoTenant):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TENANT_UNVERIFIED",
				"message": "No shop is linked to this account",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "The operation could not be completed",
			},
		})
	}
}
