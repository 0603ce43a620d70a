package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pitstop-crm/pitstop-api/services"
)

// EnsureValidToken is a middleware that checks the validity of the bearer
// token on every request. On success the session subject and claims are
// stored in the Gin context for the rest of the chain.
func EnsureValidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Authorization header is required",
				},
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Authorization header must be of the form 'Bearer <token>'",
				},
			})
			c.Abort()
			return
		}

		claims, err := services.GetAuthService().ValidateToken(parts[1])
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, services.ErrExpiredToken) {
				code = "TOKEN_EXPIRED"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": "Failed to validate session token",
				},
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("session_claims", claims)

		c.Next()
	}
}

// GetUserID extracts the session subject id from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetClaims extracts the validated session claims from the Gin context
func GetClaims(c *gin.Context) (*services.SessionClaims, error) {
	claims, exists := c.Get("session_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	sessionClaims, ok := claims.(*services.SessionClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return sessionClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
