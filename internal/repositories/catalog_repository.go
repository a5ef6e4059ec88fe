package repositories

import "ulasan/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(search string, page Page) ([]models.Category, int64, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	// DeleteBySlug removes the category; titles referencing it keep existing without a category.
	DeleteBySlug(slug string) error
}

// GenreRepository defines the interface for genre data access.
type GenreRepository interface {
	List(search string, page Page) ([]models.Genre, int64, error)
	GetBySlug(slug string) (*models.Genre, error)
	// GetBySlugs resolves every slug or fails with a not-found error naming the first unknown one.
	GetBySlugs(slugs []string) ([]models.Genre, error)
	Create(genre *models.Genre) error
	// DeleteBySlug removes the genre and its links to titles, never the titles.
	DeleteBySlug(slug string) error
}

// TitleFilter narrows a title listing. Zero values do not filter.
type TitleFilter struct {
	Name     string
	Genre    string
	Category string
	Year     *int
}

// TitleRepository defines the interface for title data access.
type TitleRepository interface {
	List(filter TitleFilter, page Page) ([]models.Title, int64, error)
	GetByID(id uint) (*models.Title, error)
	Create(title *models.Title) error
	// Update writes the scalar fields, the category and replaces the genre links.
	Update(title *models.Title) error
	// Delete removes the title with its reviews and their comments.
	Delete(id uint) error
}
