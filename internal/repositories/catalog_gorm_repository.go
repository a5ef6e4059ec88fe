package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"ulasan/internal/models"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) List(search string, page Page) ([]models.Category, int64, error) {
	q := r.db.Model(&models.Category{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", likePattern(search))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	var categories []models.Category
	if err := page.apply(q.Order("id")).Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

func (r *GORMCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category %q", slug))
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(category *models.Category) error {
	return translate(r.db.Create(category).Error, fmt.Sprintf("category with slug %q", category.Slug))
}

func (r *GORMCategoryRepository) DeleteBySlug(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "slug = ?", slug).Error; err != nil {
			return translate(err, fmt.Sprintf("category %q", slug))
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach titles from category %q: %w", slug, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("failed to delete category %q: %w", slug, err)
		}
		return nil
	})
}

// GORMGenreRepository is a GORM implementation of GenreRepository.
type GORMGenreRepository struct {
	db *gorm.DB
}

// NewGORMGenreRepository creates a new instance of GORMGenreRepository.
func NewGORMGenreRepository(db *gorm.DB) *GORMGenreRepository {
	return &GORMGenreRepository{db: db}
}

func (r *GORMGenreRepository) List(search string, page Page) ([]models.Genre, int64, error) {
	q := r.db.Model(&models.Genre{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", likePattern(search))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count genres: %w", err)
	}
	var genres []models.Genre
	if err := page.apply(q.Order("id")).Find(&genres).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, total, nil
}

func (r *GORMGenreRepository) GetBySlug(slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.First(&genre, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("genre %q", slug))
	}
	return &genre, nil
}

func (r *GORMGenreRepository) GetBySlugs(slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var found []models.Genre
	if err := r.db.Where("slug IN ?", slugs).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve genres: %w", err)
	}
	bySlug := make(map[string]models.Genre, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g
	}
	genres := make([]models.Genre, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		g, ok := bySlug[slug]
		if !ok {
			return nil, translate(gorm.ErrRecordNotFound, fmt.Sprintf("genre %q", slug))
		}
		if !seen[slug] {
			seen[slug] = true
			genres = append(genres, g)
		}
	}
	return genres, nil
}

func (r *GORMGenreRepository) Create(genre *models.Genre) error {
	return translate(r.db.Create(genre).Error, fmt.Sprintf("genre with slug %q", genre.Slug))
}

func (r *GORMGenreRepository) DeleteBySlug(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.First(&genre, "slug = ?", slug).Error; err != nil {
			return translate(err, fmt.Sprintf("genre %q", slug))
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return fmt.Errorf("failed to unlink genre %q: %w", slug, err)
		}
		if err := tx.Delete(&genre).Error; err != nil {
			return fmt.Errorf("failed to delete genre %q: %w", slug, err)
		}
		return nil
	})
}

// GORMTitleRepository is a GORM implementation of TitleRepository.
type GORMTitleRepository struct {
	db *gorm.DB
}

// NewGORMTitleRepository creates a new instance of GORMTitleRepository.
func NewGORMTitleRepository(db *gorm.DB) *GORMTitleRepository {
	return &GORMTitleRepository{db: db}
}

func (r *GORMTitleRepository) List(filter TitleFilter, page Page) ([]models.Title, int64, error) {
	q := r.db.Model(&models.Title{})
	if filter.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE LOWER(?)", likePattern(filter.Name))
	}
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)", r.db.Table("title_genres").
			Select("title_genres.title_id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.Genre))
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)", r.db.Model(&models.Category{}).
			Select("id").Where("slug = ?", filter.Category))
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}
	var titles []models.Title
	err := page.apply(q.Order("titles.id")).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, total, nil
}

func (r *GORMTitleRepository) GetByID(id uint) (*models.Title, error) {
	var title models.Title
	err := r.db.Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		First(&title, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("title %d", id))
	}
	return &title, nil
}

func (r *GORMTitleRepository) Create(title *models.Title) error {
	// Genres are existing rows; only the links are written.
	err := r.db.Omit("Category", "Genres.*").Create(title).Error
	return translate(err, "title")
}

func (r *GORMTitleRepository) Update(title *models.Title) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(title).
			Select("Name", "Year", "Description", "CategoryID").
			Updates(title)
		if res.Error != nil {
			return translate(res.Error, "title")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, fmt.Sprintf("title %d", title.ID))
		}
		genres := tx.Model(title).Association("Genres")
		var err error
		if len(title.Genres) == 0 {
			err = genres.Clear()
		} else {
			err = genres.Replace(title.Genres)
		}
		if err != nil {
			return fmt.Errorf("failed to replace genres of title %d: %w", title.ID, err)
		}
		return nil
	})
}

func (r *GORMTitleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of title %d: %w", id, err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of title %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink genres of title %d: %w", id, err)
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete title %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, fmt.Sprintf("title %d", id))
		}
		return nil
	})
}
