package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/models"
)

// BookFilters narrows a catalog listing. Zero-valued fields are ignored.
// Q matches case-insensitively against title or description.
type BookFilters struct {
	Grade    string
	Language string
	Subject  string
	Q        string
	Featured *bool
}

// CatalogReader provides read-only access to the book catalog. The order
// service depends on this interface; which implementation backs public
// browsing is a startup decision.
type CatalogReader interface {
	// List returns the books matching the filters, featured first then newest
	// first, along with the total match count.
	List(filters BookFilters) ([]models.Book, int64, error)

	// GetByID returns the book or (nil, nil) when it does not exist.
	GetByID(id string) (*models.Book, error)

	// GetByIDs returns the subset of the requested books that exist, keyed by id.
	GetByIDs(ids []string) (map[string]models.Book, error)
}

var catalogInstance CatalogReader

// InitCatalog sets the catalog reader used by the application.
func InitCatalog(reader CatalogReader) CatalogReader {
	catalogInstance = reader
	return catalogInstance
}

// GetCatalog returns the initialized catalog reader.
func GetCatalog() CatalogReader {
	return catalogInstance
}

// SetCatalog sets the catalog reader instance (primarily for testing)
func SetCatalog(reader CatalogReader) {
	catalogInstance = reader
}

// GormCatalog reads the catalog from the relational store.
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a database-backed catalog reader.
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) buildQuery(filters BookFilters) *gorm.DB {
	query := c.db.Model(&models.Book{})

	if filters.Grade != "" {
		query = query.Where("grade = ?", filters.Grade)
	}
	if filters.Language != "" {
		query = query.Where("language = ?", filters.Language)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.Featured != nil {
		query = query.Where("featured = ?", *filters.Featured)
	}
	if q := strings.TrimSpace(filters.Q); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	return query
}

// List returns matching books ordered featured-first, then newest-first.
func (c *GormCatalog) List(filters BookFilters) ([]models.Book, int64, error) {
	var total int64
	if err := c.buildQuery(filters).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []models.Book
	err := c.buildQuery(filters).
		Order("featured DESC").
		Order("created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}

	return books, total, nil
}

// GetByID returns the book or (nil, nil) when absent.
func (c *GormCatalog) GetByID(id string) (*models.Book, error) {
	var book models.Book
	err := c.db.Where("id = ?", id).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch book %s: %w", id, err)
	}
	return &book, nil
}

// GetByIDs returns the existing books among the requested ids.
func (c *GormCatalog) GetByIDs(ids []string) (map[string]models.Book, error) {
	var books []models.Book
	if err := c.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}

	byID := make(map[string]models.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}
	return byID, nil
}
