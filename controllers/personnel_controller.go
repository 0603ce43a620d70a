package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/middleware"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/services"
	"github.com/pitstop-crm/pitstop-api/store"
)

// assignableRoles are the roles an admin may hand out inside their own shop.
// Superadmin is deliberately absent: it is provisioned out of band.
var assignableRoles = map[string]bool{
	models.RoleAdmin:      true,
	models.RoleTechnician: true,
	models.RoleConsultant: true,
	models.RoleAccountant: true,
}

// CreatePersonnelRequest represents the request body for adding a staff
// member. The account starts with must_change_password set so the temporary
// password is rotated on first sign-in.
type CreatePersonnelRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
}

// UpdatePersonnelRequest represents the request body for updating a staff
// member
type UpdatePersonnelRequest struct {
	FirstName string `json:"first_name" binding:"omitempty"`
	LastName  string `json:"last_name" binding:"omitempty"`
	Phone     string `json:"phone" binding:"omitempty"`
	Role      string `json:"role" binding:"omitempty"`
	Status    string `json:"status" binding:"omitempty"`
}

// ListPersonnel handles GET /api/v1/personnel - the shop's staff roster
func ListPersonnel(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	db := store.GetStore().DB().Model(&models.UserProfile{}).Where("tenant_id = ?", *tenantID)
	if role := c.Query("role"); role != "" {
		db = db.Where("role = ?", role)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		respondStoreError(c, err, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}

	var staff []models.UserProfile
	err := db.Order("last_name asc, first_name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&staff).Error
	if err != nil {
		respondStoreError(c, err, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       staff,
		"pagination": paginationBlock(page, limit, count),
	})
}

// GetPersonnel handles GET /api/v1/personnel/:id
func GetPersonnel(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var staff models.UserProfile
	err := store.GetStore().DB().
		First(&staff, "id = ? AND tenant_id = ?", id, *tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondStoreError(c, store.ErrNotFound, "PERSONNEL_NOT_FOUND", "Staff member not found")
			return
		}
		respondStoreError(c, err, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": staff})
}

// CreatePersonnel handles POST /api/v1/personnel - adds a staff member to
// the caller's shop
func CreatePersonnel(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req CreatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !assignableRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ROLE",
				"message": "Role must be admin, technician, consultant or accountant",
			},
		})
		return
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash staff password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH_ERROR",
				"message": "Failed to create staff account",
			},
		})
		return
	}

	staff := models.UserProfile{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		PasswordHash:       hash,
		Role:               req.Role,
		Status:             models.StatusActive,
		MustChangePassword: true,
		TenantID:           tenantID,
	}
	if err := store.GetStore().DB().Create(&staff).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMAIL_IN_USE",
				"message": "An account with this email already exists",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": staff})
}

// UpdatePersonnel handles PUT /api/v1/personnel/:id - role, status and
// contact changes
func UpdatePersonnel(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePersonnelRequest
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
	if req.Role != "" {
		if !assignableRoles[req.Role] {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROLE",
					"message": "Role must be admin, technician, consultant or accountant",
				},
			})
			return
		}
		updates["role"] = req.Role
	}
	if req.Status != "" {
		if req.Status != models.StatusActive && req.Status != models.StatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be active or inactive",
				},
			})
			return
		}
		updates["status"] = req.Status
	}

	db := store.GetStore().DB()
	if len(updates) > 0 {
		res := db.Model(&models.UserProfile{}).
			Where("id = ? AND tenant_id = ?", id, *tenantID).
			Updates(updates)
		if res.Error != nil {
			respondStoreError(c, res.Error, "PERSONNEL_NOT_FOUND", "Staff member not found")
			return
		}
		if res.RowsAffected == 0 {
			respondStoreError(c, store.ErrNotFound, "PERSONNEL_NOT_FOUND", "Staff member not found")
			return
		}
	}

	var staff models.UserProfile
	if err := db.First(&staff, "id = ? AND tenant_id = ?", id, *tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondStoreError(c, store.ErrNotFound, "PERSONNEL_NOT_FOUND", "Staff member not found")
			return
		}
		respondStoreError(c, err, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": staff})
}

// DeactivatePersonnel handles DELETE /api/v1/personnel/:id. The account is
// deactivated rather than removed so completed work stays attributed on
// reports and invoices.
func DeactivatePersonnel(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	profile, _ := middleware.GetProfile(c)
	if profile != nil && profile.ID == id {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CANNOT_DEACTIVATE_SELF",
				"message": "You cannot deactivate your own account",
			},
		})
		return
	}

	res := store.GetStore().DB().Model(&models.UserProfile{}).
		Where("id = ? AND tenant_id = ?", id, *tenantID).
		Update("status", models.StatusInactive)
	if res.Error != nil {
		respondStoreError(c, res.Error, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}
	if res.RowsAffected == 0 {
		respondStoreError(c, store.ErrNotFound, "PERSONNEL_NOT_FOUND", "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Staff member deactivated"})
}
