package services

import (
	"sort"
	"strings"
	"time"

	"github.com/el-tafouk/eltafouk-api/models"
)

// MockCatalog serves a fixed in-memory dataset. It backs public browsing when
// no database-driven catalog is wanted (demo environments) and doubles as a
// test seam; order creation never runs against it.
type MockCatalog struct {
	books []models.Book
}

// NewMockCatalog creates a mock catalog preloaded with the demo dataset.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{books: demoBooks()}
}

// NewMockCatalogWithBooks creates a mock catalog over the given books.
func NewMockCatalogWithBooks(books []models.Book) *MockCatalog {
	return &MockCatalog{books: books}
}

// List filters and orders the in-memory dataset the same way the database
// reader does: featured first, then newest first.
func (c *MockCatalog) List(filters BookFilters) ([]models.Book, int64, error) {
	q := strings.ToLower(strings.TrimSpace(filters.Q))

	var matched []models.Book
	for _, book := range c.books {
		if filters.Grade != "" && book.Grade != filters.Grade {
			continue
		}
		if filters.Language != "" && book.Language != filters.Language {
			continue
		}
		if filters.Subject != "" && book.Subject != filters.Subject {
			continue
		}
		if filters.Featured != nil && book.Featured != *filters.Featured {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(book.Title), q) &&
			!strings.Contains(strings.ToLower(book.Description), q) {
			continue
		}
		matched = append(matched, book)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Featured != matched[j].Featured {
			return matched[i].Featured
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, int64(len(matched)), nil
}

// GetByID returns the book or (nil, nil) when absent.
func (c *MockCatalog) GetByID(id string) (*models.Book, error) {
	for _, book := range c.books {
		if book.ID == id {
			found := book
			return &found, nil
		}
	}
	return nil, nil
}

// GetByIDs returns the existing books among the requested ids.
func (c *MockCatalog) GetByIDs(ids []string) (map[string]models.Book, error) {
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	byID := make(map[string]models.Book)
	for _, book := range c.books {
		if requested[book.ID] {
			byID[book.ID] = book
		}
	}
	return byID, nil
}

// demoBooks is the browsing dataset used when DATA_SOURCE=mock.
func demoBooks() []models.Book {
	base := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	at := func(days int) time.Time { return base.AddDate(0, 0, days) }

	return []models.Book{
		{
			ID: "bio-g3-ar-01", Title: "التفوق في الأحياء - الصف الثالث الثانوي (عربي)",
			Grade: "g3", Language: "ar", Subject: "bio", Price: 120,
			Description: "شرح منهجي شامل مع أسئلة تدريبية متدرجة ونماذج امتحانات مطابقة للمواصفات الحديثة.",
			Featured:    true, Stock: 25, CreatedAt: at(0),
		},
		{
			ID: "bio-g3-en-01", Title: "El Tafouk Biology - Third Secondary (English)",
			Grade: "g3", Language: "en", Subject: "bio", Price: 135,
			Description: "Comprehensive syllabus coverage with bilingual terminology and exam-style practice.",
			Featured:    true, Stock: 18, CreatedAt: at(1),
		},
		{
			ID: "phy-g3-ar-01", Title: "التفوق في الفيزياء - الصف الثالث الثانوي (عربي)",
			Grade: "g3", Language: "ar", Subject: "phy", Price: 125,
			Description: "تدريبات مكثفة على الأفكار الصعبة مع بنك أسئلة متنوع وتلخيصات لكل وحدة.",
			Featured:    true, Stock: 30, CreatedAt: at(2),
		},
		{
			ID: "chem-g3-ar-01", Title: "التفوق في الكيمياء - الصف الثالث الثانوي (عربي)",
			Grade: "g3", Language: "ar", Subject: "chem", Price: 118,
			Description: "محتوى منظم يركز على الفهم العميق للتفاعلات مع نماذج محلولة خطوة بخطوة.",
			Stock:       22, CreatedAt: at(3),
		},
		{
			ID: "chem-g3-en-01", Title: "El Tafouk Chemistry - Third Secondary (English)",
			Grade: "g3", Language: "en", Subject: "chem", Price: 132,
			Description: "Modern layout with clear concept maps, worked examples, and exam-focused tasks.",
			Featured:    true, Stock: 15, CreatedAt: at(4),
		},
		{
			ID: "bio-g2-ar-01", Title: "التفوق في الأحياء - الصف الثاني الثانوي (عربي)",
			Grade: "g2", Language: "ar", Subject: "bio", Price: 105,
			Description: "تدرج تعليمي واضح من الأساسيات إلى المهارات العليا مع مراجعات دورية ذكية.",
			Stock:       28, CreatedAt: at(5),
		},
		{
			ID: "phy-g2-ar-01", Title: "التفوق في الفيزياء - الصف الثاني الثانوي (عربي)",
			Grade: "g2", Language: "ar", Subject: "phy", Price: 110,
			Description: "تطبيقات عملية وتمارين قياسية تساعد الطالب على سرعة الفهم وحل المسائل بثقة.",
			Featured:    true, Stock: 20, CreatedAt: at(6),
		},
		{
			ID: "phy-g2-en-01", Title: "El Tafouk Physics - Second Secondary (English)",
			Grade: "g2", Language: "en", Subject: "phy", Price: 122,
			Description: "Concept-first approach with practical examples and progressive question banks.",
			Stock:       17, CreatedAt: at(7),
		},
		{
			ID: "bio-g1-ar-01", Title: "التفوق في الأحياء - الصف الأول الثانوي (عربي)",
			Grade: "g1", Language: "ar", Subject: "bio", Price: 95,
			Description: "أساس قوي للمرحلة الثانوية بشرح مبسط وخرائط ذهنية ملونة.",
			Stock:       35, CreatedAt: at(8),
		},
		{
			ID: "chem-g1-en-01", Title: "El Tafouk Chemistry - First Secondary (English)",
			Grade: "g1", Language: "en", Subject: "chem", Price: 98,
			Description: "Foundational chemistry with guided experiments and end-of-unit reviews.",
			Stock:       26, CreatedAt: at(9),
		},
	}
}
