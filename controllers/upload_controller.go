package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/services"
	"github.com/el-tafouk/eltafouk-api/utils"
)

// UploadCover handles POST /api/v1/admin/upload - uploads a book cover image
// and returns the storage key plus a time-limited URL
func UploadCover(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A file field named \"file\" is required",
			},
		})
		return
	}

	key, err := services.GetImageService().UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
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

		log.WithError(err).Error("Failed to upload cover")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store the cover image",
			},
		})
		return
	}

	url, err := services.GetImageService().GetImageURL(key)
	if err != nil {
		// The object is stored; the client can still resolve the URL later.
		log.WithError(err).Warn("Failed to presign cover URL after upload")
		url = ""
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}
