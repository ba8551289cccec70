package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/el-tafouk/eltafouk-api/models"
)

// OpenTestDB opens an in-memory database with every table migrated. The
// duplicate-key translation matches the production connection so unique
// violations surface the same way.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Book{},
		&models.Order{},
		&models.OrderItem{},
		&models.AdminUser{},
	))
	return db
}

// SeedBook inserts a catalog book with sensible defaults.
func SeedBook(t *testing.T, db *gorm.DB, id string, price, stock int) models.Book {
	t.Helper()

	book := models.Book{
		ID:          id,
		Title:       "Title " + id,
		Grade:       "g3",
		Language:    "ar",
		Subject:     "bio",
		Price:       price,
		Description: "Description " + id,
		Stock:       stock,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}
