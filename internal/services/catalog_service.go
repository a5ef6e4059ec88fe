package services

import (
	"errors"
	"fmt"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
	"ulasan/internal/repositories"
)

// CatalogService manages the category and genre reference data.
type CatalogService struct {
	categories repositories.CategoryRepository
	genres     repositories.GenreRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(categories repositories.CategoryRepository, genres repositories.GenreRepository) *CatalogService {
	return &CatalogService{categories: categories, genres: genres}
}

func (s *CatalogService) ListCategories(search string, page repositories.Page) ([]models.Category, int64, error) {
	return s.categories.List(search, page)
}

func (s *CatalogService) CreateCategory(category *models.Category) error {
	return slugConflict(s.categories.Create(category), "category")
}

func (s *CatalogService) DeleteCategory(slug string) error {
	return s.categories.DeleteBySlug(slug)
}

func (s *CatalogService) ListGenres(search string, page repositories.Page) ([]models.Genre, int64, error) {
	return s.genres.List(search, page)
}

func (s *CatalogService) CreateGenre(genre *models.Genre) error {
	return slugConflict(s.genres.Create(genre), "genre")
}

func (s *CatalogService) DeleteGenre(slug string) error {
	return s.genres.DeleteBySlug(slug)
}

func slugConflict(err error, what string) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.FieldValidation("slug", fmt.Sprintf("A %s with this slug already exists.", what))
	}
	return err
}

// TitleInput is a title write. Nil fields are absent from the request.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Genres      []string // nil when absent
	Category    *string
}

// TitleService manages titles and always answers with their derived rating.
type TitleService struct {
	titles     repositories.TitleRepository
	categories repositories.CategoryRepository
	genres     repositories.GenreRepository
	ratings    *RatingService
}

// NewTitleService creates a new TitleService.
func NewTitleService(titles repositories.TitleRepository, categories repositories.CategoryRepository,
	genres repositories.GenreRepository, ratings *RatingService) *TitleService {
	return &TitleService{titles: titles, categories: categories, genres: genres, ratings: ratings}
}

func (s *TitleService) List(filter repositories.TitleFilter, page repositories.Page) ([]models.RatedTitle, int64, error) {
	titles, total, err := s.titles.List(filter, page)
	if err != nil {
		return nil, 0, err
	}
	rated, err := s.ratings.Rate(titles)
	if err != nil {
		return nil, 0, err
	}
	return rated, total, nil
}

func (s *TitleService) Get(id uint) (*models.RatedTitle, error) {
	title, err := s.titles.GetByID(id)
	if err != nil {
		return nil, err
	}
	rated, err := s.ratings.RateOne(*title)
	if err != nil {
		return nil, err
	}
	return &rated, nil
}

// Create adds a title. Name, year, genre and category are required.
func (s *TitleService) Create(in TitleInput) (*models.RatedTitle, error) {
	if missing := requiredTitleFields(in); len(missing) > 0 {
		return nil, apperrors.Validation("Validation failed", missing)
	}
	title := &models.Title{}
	if err := s.assign(title, in); err != nil {
		return nil, err
	}
	if err := s.titles.Create(title); err != nil {
		return nil, err
	}
	return s.Get(title.ID)
}

// Update changes a title. With partial unset every required field must be present.
func (s *TitleService) Update(id uint, in TitleInput, partial bool) (*models.RatedTitle, error) {
	if !partial {
		if missing := requiredTitleFields(in); len(missing) > 0 {
			return nil, apperrors.Validation("Validation failed", missing)
		}
	}
	title, err := s.titles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !partial && in.Description == nil {
		empty := ""
		in.Description = &empty
	}
	if err := s.assign(title, in); err != nil {
		return nil, err
	}
	if err := s.titles.Update(title); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *TitleService) Delete(id uint) error {
	return s.titles.Delete(id)
}

func requiredTitleFields(in TitleInput) map[string]string {
	missing := map[string]string{}
	const msg = "This field is required."
	if in.Name == nil {
		missing["name"] = msg
	}
	if in.Year == nil {
		missing["year"] = msg
	}
	if in.Category == nil {
		missing["category"] = msg
	}
	if in.Genres == nil {
		missing["genre"] = msg
	}
	return missing
}

// assign resolves slugs and copies the present fields of in onto title.
func (s *TitleService) assign(title *models.Title, in TitleInput) error {
	if in.Category != nil {
		category, err := s.categories.GetBySlug(*in.Category)
		if err != nil {
			return unknownSlug(err, "category", *in.Category)
		}
		title.Category = category
		title.CategoryID = &category.ID
	}
	if in.Genres != nil {
		genres, err := s.genres.GetBySlugs(in.Genres)
		if err != nil {
			return unknownSlug(err, "genre", "")
		}
		title.Genres = genres
	}
	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	return nil
}

func unknownSlug(err error, field, slug string) error {
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	msg := err.Error()
	if slug != "" {
		msg = fmt.Sprintf("Object with slug=%s does not exist.", slug)
	}
	return apperrors.FieldValidation(field, msg)
}
