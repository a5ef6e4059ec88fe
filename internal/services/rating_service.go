package services

import (
	"ulasan/internal/models"
	"ulasan/internal/repositories"
)

// RatingService derives title ratings from review scores at read time.
// Nothing is cached or stored.
type RatingService struct {
	reviews repositories.ReviewRepository
}

// NewRatingService creates a new RatingService.
func NewRatingService(reviews repositories.ReviewRepository) *RatingService {
	return &RatingService{reviews: reviews}
}

// Rate attaches the mean review score to every title using one aggregate query.
func (s *RatingService) Rate(titles []models.Title) ([]models.RatedTitle, error) {
	ids := make([]uint, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}
	averages, err := s.reviews.AverageScores(ids)
	if err != nil {
		return nil, err
	}

	rated := make([]models.RatedTitle, len(titles))
	for i, t := range titles {
		rated[i] = models.RatedTitle{Title: t}
		if avg, ok := averages[t.ID]; ok {
			rated[i].Rating = &avg
		}
	}
	return rated, nil
}

// RateOne is Rate for a single title.
func (s *RatingService) RateOne(title models.Title) (models.RatedTitle, error) {
	rated, err := s.Rate([]models.Title{title})
	if err != nil {
		return models.RatedTitle{}, err
	}
	return rated[0], nil
}
