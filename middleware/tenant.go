package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop-crm/pitstop-api/config"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/services"
)

// RequireTenant resolves the caller's profile and verifies its tenant
// membership. The request reaches the handler only in the "authorized"
// outcome; the two failure outcomes are:
//
//   - no profile row for the subject -> 401, the account was never
//     provisioned an application profile
//   - profile without a tenant id    -> 403 TENANT_UNVERIFIED, sent to the
//     unauthorized screen by the client
//
// On success the profile and tenant id are stored in the Gin context, which
// is the only place the data layer reads a tenant id from.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		profile, err := services.ResolveProfile(config.GetDB(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_RESOLVE_ERROR",
					"message": "Failed to resolve user profile",
				},
			})
			c.Abort()
			return
		}

		if profile == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_NOT_FOUND",
					"message": "User profile not found. Please contact your administrator.",
				},
			})
			c.Abort()
			return
		}

		if profile.TenantID == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_UNVERIFIED",
					"message": "Your account is not linked to a shop. Please contact your administrator.",
				},
			})
			c.Abort()
			return
		}

		c.Set("profile", profile)
		c.Set("tenant_id", *profile.TenantID)

		c.Next()
	}
}

// RequireRole aborts with 403 unless the resolved profile carries one of
// the given roles. Superadmin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		profile, err := GetProfile(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		if profile.Role != models.RoleSuperadmin {
			if _, ok := roleSet[profile.Role]; !ok {
				c.JSON(http.StatusForbidden, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INSUFFICIENT_ROLE",
						"message": "Insufficient permissions to access this resource",
					},
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RequireSuperadmin gates the tenant-provisioning surface. It runs after
// EnsureValidToken but before RequireTenant: a superadmin has no tenant.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		profile, err := services.ResolveProfile(config.GetDB(), userID)
		if err != nil || profile == nil || profile.Role != models.RoleSuperadmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_ROLE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Set("profile", profile)
		c.Next()
	}
}

// GetProfile extracts the resolved profile from the Gin context
func GetProfile(c *gin.Context) (*models.UserProfile, error) {
	v, exists := c.Get("profile")
	if !exists {
		return nil, &AuthError{Code: "MISSING_PROFILE", Message: "Profile not found in context"}
	}

	profile, ok := v.(*models.UserProfile)
	if !ok {
		return nil, &AuthError{Code: "INVALID_PROFILE", Message: "Profile is not in the expected format"}
	}

	return profile, nil
}

// GetTenantID extracts the active tenant id from the Gin context. Handlers
// and the store treat a missing tenant id as a refusal to run the query.
func GetTenantID(c *gin.Context) (*uuid.UUID, error) {
	v, exists := c.Get("tenant_id")
	if !exists {
		return nil, &AuthError{Code: "MISSING_TENANT", Message: "Tenant ID not found in context"}
	}

	tenantID, ok := v.(uuid.UUID)
	if !ok {
		return nil, &AuthError{Code: "INVALID_TENANT", Message: "Tenant ID is not in the expected format"}
	}

	return &tenantID, nil
}
