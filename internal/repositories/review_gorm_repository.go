package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) ListByTitle(titleID uint, page Page) ([]models.Review, int64, error) {
	q := r.db.Model(&models.Review{}).Where("title_id = ?", titleID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews of title %d: %w", titleID, err)
	}
	var reviews []models.Review
	if err := page.apply(q.Order("id")).Preload("Author").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews of title %d: %w", titleID, err)
	}
	return reviews, total, nil
}

func (r *GORMReviewRepository) GetByTitle(titleID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("review %d of title %d", reviewID, titleID))
	}
	return &review, nil
}

func (r *GORMReviewRepository) ExistsForAuthor(authorID, titleID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

func (r *GORMReviewRepository) Create(review *models.Review) error {
	err := r.db.Omit("Author", "Title").Create(review).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("You have already reviewed this title.", err)
	}
	return translate(err, "review")
}

func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Model(review).Select("Text", "Score").Updates(review)
	if res.Error != nil {
		return translate(res.Error, "review")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("review %d", review.ID))
	}
	return nil
}

func (r *GORMReviewRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of review %d: %w", id, err)
		}
		res := tx.Delete(&models.Review{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete review %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, fmt.Sprintf("review %d", id))
		}
		return nil
	})
}

func (r *GORMReviewRepository) AverageScores(titleIDs []uint) (map[uint]float64, error) {
	averages := make(map[uint]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return averages, nil
	}
	var rows []struct {
		TitleID uint
		Rating  float64
	}
	err := r.db.Model(&models.Review{}).
		Select("title_id, AVG(score) AS rating").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}
	for _, row := range rows {
		averages[row.TitleID] = row.Rating
	}
	return averages, nil
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

func (r *GORMCommentRepository) ListByReview(reviewID uint, page Page) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).Where("review_id = ?", reviewID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments of review %d: %w", reviewID, err)
	}
	var comments []models.Comment
	if err := page.apply(q.Order("id")).Preload("Author").Find(&comments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list comments of review %d: %w", reviewID, err)
	}
	return comments, total, nil
}

func (r *GORMCommentRepository) GetByReview(reviewID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&comment).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("comment %d of review %d", commentID, reviewID))
	}
	return &comment, nil
}

func (r *GORMCommentRepository) Create(comment *models.Comment) error {
	return translate(r.db.Omit("Author", "Review").Create(comment).Error, "comment")
}

func (r *GORMCommentRepository) Update(comment *models.Comment) error {
	res := r.db.Model(comment).Select("Text").Updates(comment)
	if res.Error != nil {
		return translate(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("comment %d", comment.ID))
	}
	return nil
}

func (r *GORMCommentRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("comment %d", id))
	}
	return nil
}
