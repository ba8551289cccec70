package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/middleware"
	"github.com/el-tafouk/eltafouk-api/models"
)

// AdminLoginRequest represents the request body for an admin login
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func writeInvalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "Email or password is incorrect",
		},
	})
}

// AdminLogin handles POST /api/v1/admin/auth/login
func AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var admin models.AdminUser
	if err := db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Error("Failed to load admin user")
		}
		// Same response for unknown email and bad password.
		writeInvalidCredentials(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		writeInvalidCredentials(c)
		return
	}

	cfg := config.GetConfig()
	token, err := middleware.CreateAdminSessionToken(&admin, cfg.AdminJWTSecret)
	if err != nil {
		log.WithError(err).Error("Failed to sign admin session token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to create session",
			},
		})
		return
	}

	c.SetCookie(
		middleware.AdminSessionCookie,
		token,
		int(middleware.AdminSessionTTL.Seconds()),
		"/",
		"",
		cfg.IsProduction(),
		true,
	)

	log.WithField("email", admin.Email).Info("Admin signed in")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

// AdminLogout handles POST /api/v1/admin/auth/logout
func AdminLogout(c *gin.Context) {
	cfg := config.GetConfig()
	c.SetCookie(middleware.AdminSessionCookie, "", -1, "/", "", cfg.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "Signed out"},
	})
}

// AdminMe handles GET /api/v1/admin/auth/me - returns the signed-in admin
func AdminMe(c *gin.Context) {
	email, err := middleware.GetAdminEmail(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Admin authentication required",
			},
		})
		return
	}

	role, _ := middleware.GetAdminRole(c)
	name, _ := c.Get("admin_name")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"email": email,
			"name":  name,
			"role":  role,
		},
	})
}
