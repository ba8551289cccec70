package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/controllers"
	"github.com/el-tafouk/eltafouk-api/middleware"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/tests/testutil"
)

// AuthAcceptanceTestSuite walks the admin sign-in lifecycle as a browser
// would, with a cookie jar carrying the session.
type AuthAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	client *http.Client
}

func (suite *AuthAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	config.SetConfig(&config.Config{
		GoEnv:          "test",
		DataSource:     "db",
		AdminJWTSecret: testutil.TestSessionSecret,
	})
}

func (suite *AuthAcceptanceTestSuite) SetupTest() {
	suite.db = testutil.OpenTestDB(suite.T())
	config.SetDB(suite.db)

	suite.server = httptest.NewServer(suite.createRouter())

	jar, err := cookiejar.New(nil)
	suite.NoError(err)
	suite.client = &http.Client{Jar: jar}
}

func (suite *AuthAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *AuthAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	admin := router.Group("/api/v1/admin")
	{
		admin.POST("/auth/login", controllers.AdminLogin)
		admin.POST("/auth/logout", controllers.AdminLogout)

		authed := admin.Group("", middleware.RequireAdmin())
		authed.GET("/auth/me", controllers.AdminMe)
	}

	return router
}

func (suite *AuthAcceptanceTestSuite) post(path string, body interface{}) *http.Response {
	payload, _ := json.Marshal(body)
	resp, err := suite.client.Post(suite.server.URL+path, "application/json", bytes.NewReader(payload))
	suite.NoError(err)
	return resp
}

// TestAdminSessionLifecycle_Acceptance signs in, reads the profile, signs
// out, and verifies the session is gone.
func (suite *AuthAcceptanceTestSuite) TestAdminSessionLifecycle_Acceptance() {
	testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleSuperAdmin)

	// Before signing in, the profile endpoint refuses.
	resp, err := suite.client.Get(suite.server.URL + "/api/v1/admin/auth/me")
	suite.NoError(err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Sign in; the jar keeps the session cookie.
	resp = suite.post("/api/v1/admin/auth/login", map[string]string{
		"email":    "admin@eltafouk.com",
		"password": "pass1234",
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The profile now resolves.
	resp, err = suite.client.Get(suite.server.URL + "/api/v1/admin/auth/me")
	suite.NoError(err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var me struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(suite.T(), "admin@eltafouk.com", me.Data.Email)
	assert.Equal(suite.T(), models.AdminRoleSuperAdmin, me.Data.Role)

	// Sign out; the cleared cookie kills the session.
	resp = suite.post("/api/v1/admin/auth/logout", nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = suite.client.Get(suite.server.URL + "/api/v1/admin/auth/me")
	suite.NoError(err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestLoginWithBadCredentials_Acceptance never creates a session.
func (suite *AuthAcceptanceTestSuite) TestLoginWithBadCredentials_Acceptance() {
	testutil.CreateTestAdmin(suite.T(), suite.db, "admin@eltafouk.com", "pass1234", models.AdminRoleAdmin)

	resp := suite.post("/api/v1/admin/auth/login", map[string]string{
		"email":    "admin@eltafouk.com",
		"password": "guessed-wrong",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err := suite.client.Get(suite.server.URL + "/api/v1/admin/auth/me")
	suite.NoError(err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthAcceptanceTestSuite(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	suite.Run(t, new(AuthAcceptanceTestSuite))
}
