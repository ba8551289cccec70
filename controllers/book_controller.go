package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/services"
)

// bookView is the public shape of a catalog book. The image always resolves
// to a servable path.
type bookView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Grade       string `json:"grade"`
	Language    string `json:"language"`
	Subject     string `json:"subject"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
	Stock       int    `json:"stock"`
}

func toBookView(book models.Book) bookView {
	return bookView{
		ID:          book.ID,
		Title:       book.Title,
		Grade:       book.Grade,
		Language:    book.Language,
		Subject:     book.Subject,
		Price:       book.Price,
		Description: book.Description,
		Image:       book.PublicImage(),
		Featured:    book.Featured,
		Stock:       book.Stock,
	}
}

func toBookViews(books []models.Book) []bookView {
	views := make([]bookView, len(books))
	for i, book := range books {
		views[i] = toBookView(book)
	}
	return views
}

// parseBookFilters builds catalog filters from the query string. Narrowing is
// hierarchical: language only applies with a grade, subject only with both.
func parseBookFilters(c *gin.Context) (services.BookFilters, *gin.H) {
	filters := services.BookFilters{Q: c.Query("q")}

	if grade := c.Query("grade"); grade != "" {
		if !models.IsValidGrade(grade) {
			return filters, &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown grade"}
		}
		filters.Grade = grade

		if lang := c.Query("lang"); lang != "" {
			if !models.IsValidLanguage(lang) {
				return filters, &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown language"}
			}
			filters.Language = lang

			if subject := c.Query("subject"); subject != "" {
				if !models.IsValidSubject(subject) {
					return filters, &gin.H{"code": "VALIDATION_ERROR", "message": "Unknown subject"}
				}
				filters.Subject = subject
			}
		}
	}

	if featured := c.Query("featured"); featured != "" {
		switch featured {
		case "true":
			value := true
			filters.Featured = &value
		case "false":
			value := false
			filters.Featured = &value
		default:
			return filters, &gin.H{"code": "VALIDATION_ERROR", "message": "featured must be true or false"}
		}
	}

	return filters, nil
}

// GetBooks handles GET /api/v1/books - lists catalog books with filters
func GetBooks(c *gin.Context) {
	filters, validationErr := parseBookFilters(c)
	if validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   *validationErr,
		})
		return
	}

	books, total, err := services.GetCatalog().List(filters)
	if err != nil {
		log.WithError(err).Error("Failed to list books")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load books",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"books": toBookViews(books),
			"total": total,
		},
	})
}

// GetBook handles GET /api/v1/books/:id - returns one catalog book
func GetBook(c *gin.Context) {
	book, err := services.GetCatalog().GetByID(c.Param("id"))
	if err != nil {
		log.WithError(err).Error("Failed to load book")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load book",
			},
		})
		return
	}

	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": "Book was not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toBookView(*book),
	})
}
