package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/models"
)

// AdminSessionCookie is the cookie carrying the admin session token.
const AdminSessionCookie = "admin_session"

// AdminSessionTTL is how long an admin session stays valid.
const AdminSessionTTL = 12 * time.Hour

// AdminClaims is the session token payload for a signed-in admin.
type AdminClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// CreateAdminSessionToken signs a session token for the given admin.
func CreateAdminSessionToken(admin *models.AdminUser, secret string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AdminSessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ReadAdminSession validates a session token and returns its claims. Only
// HS256 tokens are accepted.
func ReadAdminSession(tokenString, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "Admin authentication required",
		},
	})
	c.Abort()
}

// RequireAdmin validates the admin session cookie and stores the claims in
// the Gin context for downstream handlers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(AdminSessionCookie)
		if err != nil || cookie == "" {
			unauthorized(c)
			return
		}

		cfg := config.GetConfig()
		claims, err := ReadAdminSession(cookie, cfg.AdminJWTSecret)
		if err != nil {
			log.WithError(err).Debug("Rejected admin session token")
			unauthorized(c)
			return
		}

		c.Set("admin_id", claims.Subject)
		c.Set("admin_email", claims.Email)
		c.Set("admin_name", claims.Name)
		c.Set("admin_role", claims.Role)
		c.Next()
	}
}

// RequireRole restricts a route to admins holding one of the given roles.
// Must run after RequireAdmin.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		role, err := GetAdminRole(c)
		if err != nil {
			unauthorized(c)
			return
		}

		if !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetAdminEmail extracts the signed-in admin's email from the Gin context
func GetAdminEmail(c *gin.Context) (string, error) {
	email, exists := c.Get("admin_email")
	if !exists {
		return "", &AuthError{Code: "MISSING_SESSION", Message: "Admin session not found in context"}
	}

	emailStr, ok := email.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_SESSION", Message: "Admin email is not a string"}
	}

	return emailStr, nil
}

// GetAdminRole extracts the signed-in admin's role from the Gin context
func GetAdminRole(c *gin.Context) (string, error) {
	role, exists := c.Get("admin_role")
	if !exists {
		return "", &AuthError{Code: "MISSING_SESSION", Message: "Admin session not found in context"}
	}

	roleStr, ok := role.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_SESSION", Message: "Admin role is not a string"}
	}

	return roleStr, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
