package models

import (
	"time"
)

// Grade, language and subject values accepted by the catalog.
var (
	GradeValues    = []string{"g1", "g2", "g3"}
	LanguageValues = []string{"ar", "en"}
	SubjectValues  = []string{"bio", "phy", "chem"}
)

// DefaultBookImage is served in public payloads when a book has no cover.
const DefaultBookImage = "/images/book-placeholder.svg"

// Book represents a catalog entry for a secondary-school book
type Book struct {
	ID          string    `gorm:"primaryKey;size:80" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Grade       string    `gorm:"not null;index" json:"grade"`    // g1, g2, g3
	Language    string    `gorm:"not null;index" json:"language"` // ar, en
	Subject     string    `gorm:"not null;index" json:"subject"`  // bio, phy, chem
	Price       int       `gorm:"not null;check:price >= 0" json:"price"` // EGP
	Description string    `gorm:"type:text;not null" json:"description"`
	Image       *string   `json:"image"` // nullable, public payloads fall back to DefaultBookImage
	Featured    bool      `gorm:"not null;default:false;index" json:"featured"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Book model
func (Book) TableName() string {
	return "books"
}

// PublicImage returns the cover URL with the placeholder fallback applied.
func (b *Book) PublicImage() string {
	if b.Image == nil || *b.Image == "" {
		return DefaultBookImage
	}
	return *b.Image
}

// IsValidGrade reports whether value is an accepted grade.
func IsValidGrade(value string) bool {
	return containsValue(GradeValues, value)
}

// IsValidLanguage reports whether value is an accepted language.
func IsValidLanguage(value string) bool {
	return containsValue(LanguageValues, value)
}

// IsValidSubject reports whether value is an accepted subject.
func IsValidSubject(value string) bool {
	return containsValue(SubjectValues, value)
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
