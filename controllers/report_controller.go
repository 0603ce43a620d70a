package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/store"
)

// TechnicianPerformance is one row of the technician report: how many
// orders each technician closed in the window and the revenue they carried
type TechnicianPerformance struct {
	TechnicianID   uuid.UUID `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	CompletedCount int64     `json:"completed_count"`
	TotalRevenue   float64   `json:"total_revenue"`
	AverageTicket  float64   `json:"average_ticket"`
}

// GetTechnicianReport handles GET /api/v1/reports/technicians with optional
// ?from and ?to (RFC 3339 date) bounds on order completion time. Only
// completed and delivered orders count toward the numbers.
func GetTechnicianReport(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	db := store.GetStore().DB().Model(&models.Service{}).
		Select(`services.technician_id as technician_id,
			user_profiles.first_name || ' ' || user_profiles.last_name as technician_name,
			count(services.id) as completed_count,
			coalesce(sum(services.total_cost), 0) as total_revenue`).
		Joins("JOIN user_profiles ON user_profiles.id = services.technician_id").
		Where("services.tenant_id = ?", *tenantID).
		Where("services.technician_id IS NOT NULL").
		Where("services.status IN ?", []string{models.ServiceCompleted, models.ServiceDelivered}).
		Group("services.technician_id, user_profiles.first_name, user_profiles.last_name").
		Order("total_revenue desc")

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondBadDate(c, "from")
			return
		}
		db = db.Where("services.updated_at >= ?", from)
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondBadDate(c, "to")
			return
		}
		db = db.Where("services.updated_at < ?", to.AddDate(0, 0, 1))
	}

	var rows []TechnicianPerformance
	if err := db.Scan(&rows).Error; err != nil {
		respondStoreError(c, err, "REPORT_ERROR", "Failed to build the report")
		return
	}

	for i := range rows {
		if rows[i].CompletedCount > 0 {
			rows[i].AverageTicket = rows[i].TotalRevenue / float64(rows[i].CompletedCount)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

func respondBadDate(c *gin.Context, param string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_DATE",
			"message": param + " must be a YYYY-MM-DD date",
		},
	})
}
