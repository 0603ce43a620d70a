package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitstop-crm/pitstop-api/services"
	"github.com/pitstop-crm/pitstop-api/store"
)

// GetServiceInvoice handles GET /api/v1/services/:id/invoice, returning the
// printable HTML invoice for a service order
func GetServiceInvoice(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	html, err := services.RenderInvoice(store.GetStore().DB(), *tenantID, id)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SERVICE_NOT_FOUND",
					"message": "Service order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVOICE_ERROR",
				"message": "Failed to render the invoice",
			},
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
