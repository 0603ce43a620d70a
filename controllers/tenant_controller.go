package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/config"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/services"
	"github.com/pitstop-crm/pitstop-api/utils"
)

// ProvisionTenantRequest represents the request body for creating a shop
// together with its first admin account
type ProvisionTenantRequest struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address" binding:"omitempty"`
	Phone         string `json:"phone" binding:"omitempty"`
	Email         string `json:"email" binding:"omitempty,email"`
	AdminFirst    string `json:"admin_first_name" binding:"required"`
	AdminLast     string `json:"admin_last_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
}

// UpdateTenantRequest represents the request body for updating shop details
type UpdateTenantRequest struct {
	Name    string `json:"name" binding:"omitempty"`
	Address string `json:"address" binding:"omitempty"`
	Phone   string `json:"phone" binding:"omitempty"`
	Email   string `json:"email" binding:"omitempty,email"`
}

// ProvisionTenant handles POST /api/v1/tenants. Superadmin only. The shop
// and its first admin are created in one transaction: a shop without an
// admin would be unreachable.
func ProvisionTenant(c *gin.Context) {
	var req ProvisionTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	hash, err := services.HashPassword(req.AdminPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to hash admin password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH_ERROR",
				"message": "Failed to provision shop",
			},
		})
		return
	}

	tenant := models.Tenant{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	var admin models.UserProfile

	err = config.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		admin = models.UserProfile{
			FirstName:          req.AdminFirst,
			LastName:           req.AdminLast,
			Email:              req.AdminEmail,
			PasswordHash:       hash,
			Role:               models.RoleAdmin,
			Status:             models.StatusActive,
			MustChangePassword: true,
			TenantID:           &tenant.ID,
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("shop", req.Name).Error("shop provisioning failed")
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROVISION_FAILED",
				"message": "Could not provision the shop, the admin email may already be in use",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"tenant": tenant,
			"admin":  admin,
		},
	})
}

// GetMyTenant handles GET /api/v1/tenants/me - the caller's shop details,
// with a presigned logo URL when a logo has been uploaded
func GetMyTenant(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var tenant models.Tenant
	err := config.GetDB().First(&tenant, "id = ?", *tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_NOT_FOUND",
					"message": "Shop not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch shop details",
			},
		})
		return
	}

	attachLogoURL(&tenant)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tenant})
}

// UpdateMyTenant handles PUT /api/v1/tenants/me - admin-only shop detail
// changes
func UpdateMyTenant(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}

	db := config.GetDB()
	if len(updates) > 0 {
		if err := db.Model(&models.Tenant{}).Where("id = ?", *tenantID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update shop details",
				},
			})
			return
		}
	}

	var tenant models.Tenant
	if err := db.First(&tenant, "id = ?", *tenantID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch shop details",
			},
		})
		return
	}

	attachLogoURL(&tenant)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tenant})
}

// UploadTenantLogo handles POST /api/v1/tenants/me/logo. The previous logo,
// if any, is removed from storage after the new one is saved.
func UploadTenantLogo(c *gin.Context) {
	tenantID, ok := requireTenantID(c)
	if !ok {
		return
	}

	storage := services.GetStorageService()
	if storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOADS_DISABLED",
				"message": "Logo uploads are not configured on this server",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A logo file is required",
			},
		})
		return
	}

	if err := utils.ValidateLogoFile(fileHeader); err != nil {
		var uploadErr *utils.LogoUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var tenant models.Tenant
	if err := db.First(&tenant, "id = ?", *tenantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TENANT_NOT_FOUND",
				"message": "Shop not found",
			},
		})
		return
	}

	s3Key, err := storage.UploadLogo(tenantID.String(), fileHeader)
	if err != nil {
		logrus.WithError(err).WithField("tenant_id", tenantID).Error("logo upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store the logo",
			},
		})
		return
	}

	oldKey := tenant.LogoS3Key
	if err := db.Model(&tenant).Update("logo_s3_key", s3Key).Error; err != nil {
		// roll the stored object back so no orphan remains
		if delErr := storage.DeleteLogo(s3Key); delErr != nil {
			logrus.WithError(delErr).Warn("failed to clean up logo after database error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save the logo reference",
			},
		})
		return
	}

	if oldKey != nil && *oldKey != "" {
		if err := storage.DeleteLogo(*oldKey); err != nil {
			logrus.WithError(err).WithField("s3_key", *oldKey).Warn("failed to delete previous logo")
		}
	}

	tenant.LogoS3Key = &s3Key
	attachLogoURL(&tenant)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tenant})
}

// attachLogoURL fills the transient LogoURL field from storage. Failures are
// logged and leave the field empty rather than failing the whole request.
func attachLogoURL(tenant *models.Tenant) {
	if tenant.LogoS3Key == nil || *tenant.LogoS3Key == "" {
		return
	}

	storage := services.GetStorageService()
	if storage == nil {
		return
	}

	url, err := storage.GetPresignedURL(*tenant.LogoS3Key)
	if err != nil {
		logrus.WithError(err).WithField("s3_key", *tenant.LogoS3Key).Warn("failed to presign logo URL")
		return
	}
	if url != "" {
		tenant.LogoURL = &url
	}
}
