package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/controllers"
	"github.com/el-tafouk/eltafouk-api/middleware"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/tests/testutil"
)

// AuthIntegrationTestSuite covers the admin session endpoints and the role
// gate over real routing.
type AuthIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
}

func (suite *AuthIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	config.SetConfig(&config.Config{
		GoEnv:          "test",
		DataSource:     "db",
		AdminJWTSecret: testutil.TestSessionSecret,
	})
}

func (suite *AuthIntegrationTestSuite) SetupTest() {
	suite.db = testutil.OpenTestDB(suite.T())
	config.SetDB(suite.db)

	suite.router = gin.New()
	admin := suite.router.Group("/api/v1/admin")
	{
		admin.POST("/auth/login", controllers.AdminLogin)
		admin.POST("/auth/logout", controllers.AdminLogout)

		authed := admin.Group("", middleware.RequireAdmin())
		{
			authed.GET("/auth/me", controllers.AdminMe)
			authed.GET("/books", controllers.AdminListBooks)

			writers := authed.Group("", middleware.RequireRole(
				models.AdminRoleSuperAdmin,
				models.AdminRoleAdmin,
			))
			writers.DELETE("/books/:id", controllers.AdminDeleteBook)
		}
	}
}

func (suite *AuthIntegrationTestSuite) login(email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, _ := http.NewRequest("POST", "/api/v1/admin/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sessionFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.AdminSessionCookie {
			return cookie
		}
	}
	return nil
}

func (suite *AuthIntegrationTestSuite) TestLoginSetsHTTPOnlySessionCookie() {
	testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleAdmin)

	w := suite.login("admin@eltafouk.com", "pass1234")
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	cookie := sessionFrom(w)
	suite.Require().NotNil(cookie)
	suite.True(cookie.HttpOnly, "session cookie must be HttpOnly")
	suite.NotEmpty(cookie.Value)

	// Password hash never leaks through the response.
	suite.NotContains(w.Body.String(), "password")
}

func (suite *AuthIntegrationTestSuite) TestLoginRejections() {
	testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleAdmin)

	w := suite.login("admin@eltafouk.com", "wrong-pass")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "INVALID_CREDENTIALS")

	// Unknown email yields the identical response shape.
	w = suite.login("ghost@eltafouk.com", "pass1234")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "INVALID_CREDENTIALS")

	w = suite.login("not-an-email", "pass1234")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthIntegrationTestSuite) TestMeReflectsSession() {
	testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleSuperAdmin)

	login := suite.login("admin@eltafouk.com", "pass1234")
	cookie := sessionFrom(login)
	suite.Require().NotNil(cookie)

	req, _ := http.NewRequest("GET", "/api/v1/admin/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "admin@eltafouk.com")
	suite.Contains(w.Body.String(), models.AdminRoleSuperAdmin)
}

func (suite *AuthIntegrationTestSuite) TestLogoutClearsCookie() {
	req, _ := http.NewRequest("POST", "/api/v1/admin/auth/logout", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	cookie := sessionFrom(w)
	suite.Require().NotNil(cookie)
	suite.Empty(cookie.Value)
	suite.Negative(cookie.MaxAge)
}

func (suite *AuthIntegrationTestSuite) TestRoleGate() {
	editor := testutil.CreateTestAdmin(suite.T(), suite.db, "editor@eltafouk.com", "pass1234", models.AdminRoleEditor)
	cookie := testutil.SessionCookieFor(suite.T(), editor, testutil.TestSessionSecret)
	testutil.SeedBook(suite.T(), suite.db, "bio-g3-ar-01", 150, 5)

	// Editors can read the catalog.
	req, _ := http.NewRequest("GET", "/api/v1/admin/books", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	// But not delete from it.
	req, _ = http.NewRequest("DELETE", "/api/v1/admin/books/bio-g3-ar-01", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "FORBIDDEN")
}

func (suite *AuthIntegrationTestSuite) TestTamperedTokenRejected() {
	admin := testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleAdmin)
	cookie := testutil.SessionCookieFor(suite.T(), admin, "some-other-secret")

	req, _ := http.NewRequest("GET", "/api/v1/admin/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthIntegrationTestSuite(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	suite.Run(t, new(AuthIntegrationTestSuite))
}
