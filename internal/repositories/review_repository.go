package repositories

import "ulasan/internal/models"

// ReviewRepository defines the interface for review data access.
// Reads are always scoped to a parent title.
type ReviewRepository interface {
	ListByTitle(titleID uint, page Page) ([]models.Review, int64, error)
	GetByTitle(titleID, reviewID uint) (*models.Review, error)
	ExistsForAuthor(authorID, titleID uint) (bool, error)
	// Create fails with a conflict when the author already reviewed the title.
	Create(review *models.Review) error
	Update(review *models.Review) error
	// Delete removes the review and its comments.
	Delete(id uint) error
	// AverageScores returns the mean score per title id; titles without reviews are absent.
	AverageScores(titleIDs []uint) (map[uint]float64, error)
}

// CommentRepository defines the interface for comment data access.
// Reads are always scoped to a parent review.
type CommentRepository interface {
	ListByReview(reviewID uint, page Page) ([]models.Comment, int64, error)
	GetByReview(reviewID, commentID uint) (*models.Comment, error)
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(id uint) error
}
