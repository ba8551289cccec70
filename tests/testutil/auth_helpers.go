package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/middleware"
	"github.com/el-tafouk/eltafouk-api/models"
)

// TestSessionSecret signs admin session tokens in tests.
const TestSessionSecret = "test-session-secret"

// CreateTestAdmin inserts an admin user with a bcrypt-hashed password.
func CreateTestAdmin(t *testing.T, db *gorm.DB, email, password, role string) *models.AdminUser {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	require.NoError(t, err)

	admin := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test Admin",
		Role:         role,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// SessionCookieFor signs a session token for the admin and wraps it in the
// cookie the middleware expects.
func SessionCookieFor(t *testing.T, admin *models.AdminUser, secret string) *http.Cookie {
	t.Helper()

	token, err := middleware.CreateAdminSessionToken(admin, secret)
	require.NoError(t, err)

	return &http.Cookie{Name: middleware.AdminSessionCookie, Value: token}
}

// SetAdminContext populates the Gin context the way RequireAdmin does, for
// handler-level tests that bypass the middleware.
func SetAdminContext(c *gin.Context, admin *models.AdminUser) {
	c.Set("admin_id", admin.ID)
	c.Set("admin_email", admin.Email)
	c.Set("admin_name", admin.Name)
	c.Set("admin_role", admin.Role)
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
