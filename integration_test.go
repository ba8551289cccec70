package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/services"
)

// setupRouter wires the real routing table over an in-memory database so
// integration tests exercise exactly what production serves.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GoEnv:          "test",
		Port:           "8080",
		DataSource:     "db",
		AdminJWTSecret: "integration-test-secret",
	}
	config.SetConfig(cfg)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := db.AutoMigrate(&models.Book{}, &models.Order{}, &models.OrderItem{}, &models.AdminUser{}); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	config.SetDB(db)

	services.InitCatalog(services.NewGormCatalog(db))
	services.InitOrderService(db, services.NewGormCatalog(db))
	services.SetRateLimiter(services.NewMemoryRateLimiter(services.CheckoutRateLimit, services.CheckoutRateWindow))
	services.InitImageService(services.NewMockS3Service())

	return buildRouter(cfg)
}

func seedIntegrationBook(t *testing.T, id string, price, stock int) {
	t.Helper()
	book := models.Book{
		ID:          id,
		Title:       "Title " + id,
		Grade:       "g3",
		Language:    "ar",
		Subject:     "bio",
		Price:       price,
		Description: "Description",
		Stock:       stock,
	}
	require.NoError(t, config.GetDB().Create(&book).Error)
}

func seedIntegrationAdmin(t *testing.T, email, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	require.NoError(t, err)
	admin := models.AdminUser{Email: email, PasswordHash: string(hash), Name: "Test Admin", Role: role}
	require.NoError(t, config.GetDB().Create(&admin).Error)
}

func postJSON(router *gin.Engine, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func checkoutPayload(bookID string, qty int) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{
			"name":    "Ahmed Samir",
			"phone":   "01012345678",
			"city":    "Cairo",
			"address": "12 Tahrir St",
		},
		"items": []map[string]interface{}{
			{"bookId": bookID, "qty": qty},
		},
	}
}

// TestHealthEndpointIntegration tests the /api/v1/health endpoint with full routing
func TestHealthEndpointIntegration(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status 200 OK")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "El Tafouk API is running", response["message"])
}

// TestCheckoutFlowIntegration places an order over HTTP and tracks it
func TestCheckoutFlowIntegration(t *testing.T) {
	router := setupRouter()
	seedIntegrationBook(t, "bio-g3-ar-01", 50, 5)

	w := postJSON(router, "/api/v1/orders", checkoutPayload("bio-g3-ar-01", 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID string `json:"orderId"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "PENDING", created.Data.Status)
	require.NotEmpty(t, created.Data.OrderID)

	// Tracking is case-insensitive on the order id.
	req, _ := http.NewRequest("GET", "/api/v1/orders/"+created.Data.OrderID, nil)
	track := httptest.NewRecorder()
	router.ServeHTTP(track, req)
	require.Equal(t, http.StatusOK, track.Code)

	var tracked struct {
		Data struct {
			Order struct {
				Total    int `json:"total"`
				Customer struct {
					PhoneMasked string `json:"phoneMasked"`
				} `json:"customer"`
			} `json:"order"`
			Timeline []string `json:"timeline"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(track.Body.Bytes(), &tracked))
	assert.Equal(t, 100, tracked.Data.Order.Total)
	assert.Equal(t, "*********678", tracked.Data.Order.Customer.PhoneMasked)
	assert.Equal(t, []string{"PENDING", "CONFIRMED", "SHIPPED", "DELIVERED"}, tracked.Data.Timeline)
}

// TestCheckoutValidationIntegration rejects malformed payloads at the boundary
func TestCheckoutValidationIntegration(t *testing.T) {
	router := setupRouter()
	seedIntegrationBook(t, "bio-g3-ar-01", 50, 5)

	payload := checkoutPayload("bio-g3-ar-01", 1)
	payload["customer"].(map[string]interface{})["phone"] = "12345"
	w := postJSON(router, "/api/v1/orders", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_EGYPT_PHONE")

	w = postJSON(router, "/api/v1/orders", checkoutPayload("no-such-book", 1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "BOOK_NOT_FOUND")

	w = postJSON(router, "/api/v1/orders", checkoutPayload("bio-g3-ar-01", 99))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OUT_OF_STOCK")
}

// TestCheckoutRateLimitIntegration hits the per-client checkout cap
func TestCheckoutRateLimitIntegration(t *testing.T) {
	router := setupRouter()
	seedIntegrationBook(t, "bio-g3-ar-01", 50, 1000)

	payload := checkoutPayload("bio-g3-ar-01", 1)
	for i := 0; i < services.CheckoutRateLimit; i++ {
		w := postJSON(router, "/api/v1/orders", payload)
		require.Equal(t, http.StatusCreated, w.Code, "request %d should pass", i+1)
	}

	w := postJSON(router, "/api/v1/orders", payload)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

// TestAdminFlowIntegration signs in and drives an order through its lifecycle
func TestAdminFlowIntegration(t *testing.T) {
	router := setupRouter()
	seedIntegrationBook(t, "bio-g3-ar-01", 50, 5)
	seedIntegrationAdmin(t, "admin@eltafouk.com", "s3cret-pass", models.AdminRoleAdmin)

	// Unauthenticated admin access is rejected.
	req, _ := http.NewRequest("GET", "/api/v1/admin/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login := postJSON(router, "/api/v1/admin/auth/login", map[string]string{
		"email":    "admin@eltafouk.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	var session *http.Cookie
	for _, cookie := range login.Result().Cookies() {
		if cookie.Name == "admin_session" {
			session = cookie
		}
	}
	require.NotNil(t, session, "login must set the session cookie")

	created := postJSON(router, "/api/v1/orders", checkoutPayload("bio-g3-ar-01", 1))
	require.Equal(t, http.StatusCreated, created.Code)
	var createdBody struct {
		Data struct {
			OrderID string `json:"orderId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdBody))
	orderID := createdBody.Data.OrderID

	patch := func(status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"status": status})
		req, _ := http.NewRequest("PATCH", "/api/v1/admin/orders/"+orderID, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(session)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, patch("CONFIRMED").Code)
	assert.Equal(t, http.StatusOK, patch("SHIPPED").Code)

	// Moving backwards is rejected.
	resp := patch("PENDING")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "INVALID_STATUS_TRANSITION")

	assert.Equal(t, http.StatusOK, patch("DELIVERED").Code)

	// Delivered is terminal.
	resp = patch("CANCELLED")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

// TestAdminLoginRejectsBadPassword verifies credentials are actually checked
func TestAdminLoginRejectsBadPassword(t *testing.T) {
	router := setupRouter()
	seedIntegrationAdmin(t, "admin@eltafouk.com", "s3cret-pass", models.AdminRoleAdmin)

	w := postJSON(router, "/api/v1/admin/auth/login", map[string]string{
		"email":    "admin@eltafouk.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

// TestTrackingRejectsMalformedOrderID covers the order id contract at the edge
func TestTrackingRejectsMalformedOrderID(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/orders/not-an-order-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ORDER_ID")

	start := time.Now()
	req, _ = http.NewRequest("GET", "/api/v1/orders/ORD-20250101-ZZZZ", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Less(t, time.Since(start), time.Second)
}
