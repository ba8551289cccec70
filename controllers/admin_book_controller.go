package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/models"
)

// BookRequest represents the request body for creating or replacing a book
type BookRequest struct {
	ID          string  `json:"id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Grade       string  `json:"grade" binding:"required"`
	Language    string  `json:"language" binding:"required"`
	Subject     string  `json:"subject" binding:"required"`
	Price       int     `json:"price" binding:"gte=0"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	Featured    bool    `json:"featured"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

func (r *BookRequest) validateEnums() *gin.H {
	if !models.IsValidGrade(r.Grade) {
		return &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown grade"}
	}
	if !models.IsValidLanguage(r.Language) {
		return &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown language"}
	}
	if !models.IsValidSubject(r.Subject) {
		return &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown subject"}
	}
	return nil
}

func writeDatabaseError(c *gin.Context, err error, message string) {
	log.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": message,
		},
	})
}

func writeBookNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "BOOK_NOT_FOUND",
			"message": "Book was not found",
		},
	})
}

// AdminListBooks handles GET /api/v1/admin/books - full catalog including
// out-of-stock titles
func AdminListBooks(c *gin.Context) {
	db := config.GetDB()
	var books []models.Book
	if err := db.Order("created_at DESC").Find(&books).Error; err != nil {
		writeDatabaseError(c, err, "Failed to load books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"books": books,
			"total": len(books),
		},
	})
}

// AdminCreateBook handles POST /api/v1/admin/books
func AdminCreateBook(c *gin.Context) {
	var req BookRequest
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

	if validationErr := req.validateEnums(); validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": *validationErr})
		return
	}

	book := models.Book{
		ID:          req.ID,
		Title:       req.Title,
		Grade:       req.Grade,
		Language:    req.Language,
		Subject:     req.Subject,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Featured:    req.Featured,
		Stock:       req.Stock,
	}

	db := config.GetDB()
	if err := db.Create(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_BOOK",
					"message": "A book with this id already exists",
				},
			})
			return
		}
		writeDatabaseError(c, err, "Failed to create book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    book,
	})
}

// AdminGetBook handles GET /api/v1/admin/books/:id
func AdminGetBook(c *gin.Context) {
	db := config.GetDB()
	var book models.Book
	if err := db.First(&book, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeBookNotFound(c)
			return
		}
		writeDatabaseError(c, err, "Failed to load book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    book,
	})
}

// AdminUpdateBook handles PUT /api/v1/admin/books/:id - full replacement of
// the book's editable fields
func AdminUpdateBook(c *gin.Context) {
	var req BookRequest
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

	if validationErr := req.validateEnums(); validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": *validationErr})
		return
	}

	db := config.GetDB()
	var book models.Book
	if err := db.First(&book, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeBookNotFound(c)
			return
		}
		writeDatabaseError(c, err, "Failed to load book")
		return
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"grade":       req.Grade,
		"language":    req.Language,
		"subject":     req.Subject,
		"price":       req.Price,
		"description": req.Description,
		"image":       req.Image,
		"featured":    req.Featured,
		"stock":       req.Stock,
	}
	if err := db.Model(&book).Updates(updates).Error; err != nil {
		writeDatabaseError(c, err, "Failed to update book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    book,
	})
}

// AdminDeleteBook handles DELETE /api/v1/admin/books/:id
func AdminDeleteBook(c *gin.Context) {
	db := config.GetDB()
	result := db.Delete(&models.Book{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		writeDatabaseError(c, result.Error, "Failed to delete book")
		return
	}
	if result.RowsAffected == 0 {
		writeBookNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "Book deleted"},
	})
}

// UpdateStockRequest represents the request body for a stock adjustment
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,gte=0"`
}

// AdminUpdateBookStock handles PATCH /api/v1/admin/books/:id/stock
func AdminUpdateBookStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "stock must be a non-negative integer",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	result := db.Model(&models.Book{}).Where("id = ?", c.Param("id")).UpdateColumn("stock", *req.Stock)
	if result.Error != nil {
		writeDatabaseError(c, result.Error, "Failed to update stock")
		return
	}
	if result.RowsAffected == 0 {
		writeBookNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":    c.Param("id"),
			"stock": *req.Stock,
		},
	})
}
