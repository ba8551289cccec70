package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/el-tafouk/eltafouk-api/services"
)

func setupUploadRoutes(t *testing.T) (*gin.Engine, *services.MockImageService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockImages := services.NewMockImageService()
	mockImages.SetAsMockForTesting()

	router := gin.New()
	router.POST("/api/v1/admin/upload", UploadCover)
	return router, mockImages
}

func performUpload(t *testing.T, router *gin.Engine, fieldName, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/admin/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadCover_Success(t *testing.T) {
	router, mockImages := setupUploadRoutes(t)

	w := performUpload(t, router, "file", "cover.png", []byte("fake png content"))

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Key string `json:"key"`
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "covers/mock_cover.png", response.Data.Key)
	assert.Contains(t, response.Data.URL, response.Data.Key)
	assert.True(t, mockImages.ImageExists(response.Data.Key))
}

func TestUploadCover_MissingFileField(t *testing.T) {
	router, mockImages := setupUploadRoutes(t)

	w := performUpload(t, router, "attachment", "cover.png", []byte("fake png content"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
	assert.Empty(t, mockImages.GetUploadedImages())
}

func TestUploadCover_InvalidFormat(t *testing.T) {
	router, mockImages := setupUploadRoutes(t)

	for _, filename := range []string{"cover.gif", "cover.pdf", "cover"} {
		w := performUpload(t, router, "file", filename, []byte("not an image"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_FILE_FORMAT")
	}
	assert.Empty(t, mockImages.GetUploadedImages())
}

func TestUploadCover_TooLarge(t *testing.T) {
	router, mockImages := setupUploadRoutes(t)

	oversized := make([]byte, 10*1024*1024+1)
	w := performUpload(t, router, "file", "cover.jpg", oversized)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_TOO_LARGE")
	assert.Empty(t, mockImages.GetUploadedImages())
}
