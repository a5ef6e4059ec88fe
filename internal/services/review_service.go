package services

import (
	"errors"
	"fmt"
	"log"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
	"ulasan/internal/repositories"
)

const duplicateReviewMessage = "You have already reviewed this title."

// ReviewService handles reviews, always scoped to their parent title.
type ReviewService struct {
	reviews repositories.ReviewRepository
	titles  repositories.TitleRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, titles repositories.TitleRepository) *ReviewService {
	return &ReviewService{reviews: reviews, titles: titles}
}

func (s *ReviewService) List(titleID uint, page repositories.Page) ([]models.Review, int64, error) {
	if _, err := s.titles.GetByID(titleID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByTitle(titleID, page)
}

// Get returns the review only when it belongs to the title.
func (s *ReviewService) Get(titleID, reviewID uint) (*models.Review, error) {
	return s.reviews.GetByTitle(titleID, reviewID)
}

// Create adds author's review of the title. A nil score means the default.
// A second review by the same author fails with a validation error, whether
// the pre-check or the storage constraint catches it.
func (s *ReviewService) Create(author *models.User, titleID uint, text string, score *int) (*models.Review, error) {
	if _, err := s.titles.GetByID(titleID); err != nil {
		return nil, err
	}
	value := models.DefaultScore
	if score != nil {
		value = *score
	}
	if err := checkScore(value); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForAuthor(author.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.FieldValidation("non_field_errors", duplicateReviewMessage)
	}

	review := &models.Review{AuthorID: author.ID, TitleID: titleID, Text: text, Score: value}
	if err := s.reviews.Create(review); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Printf("Duplicate review by user %d on title %d caught by constraint", author.ID, titleID)
			return nil, apperrors.FieldValidation("non_field_errors", duplicateReviewMessage)
		}
		return nil, err
	}
	review.Author = author
	return review, nil
}

// Update changes the text and score of an already loaded review.
func (s *ReviewService) Update(review *models.Review, text *string, score *int) (*models.Review, error) {
	updated := *review
	if text != nil {
		updated.Text = *text
	}
	if score != nil {
		if err := checkScore(*score); err != nil {
			return nil, err
		}
		updated.Score = *score
	}
	if err := s.reviews.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ReviewService) Delete(review *models.Review) error {
	return s.reviews.Delete(review.ID)
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return apperrors.FieldValidation("score",
			fmt.Sprintf("Score must be between %d and %d.", models.MinScore, models.MaxScore))
	}
	return nil
}

// CommentService handles comments, scoped to a review of a title.
type CommentService struct {
	comments repositories.CommentRepository
	reviews  repositories.ReviewRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repositories.CommentRepository, reviews repositories.ReviewRepository) *CommentService {
	return &CommentService{comments: comments, reviews: reviews}
}

func (s *CommentService) List(titleID, reviewID uint, page repositories.Page) ([]models.Comment, int64, error) {
	if _, err := s.reviews.GetByTitle(titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByReview(reviewID, page)
}

// Get returns the comment only when the whole title/review/comment path matches.
func (s *CommentService) Get(titleID, reviewID, commentID uint) (*models.Comment, error) {
	if _, err := s.reviews.GetByTitle(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.GetByReview(reviewID, commentID)
}

func (s *CommentService) Create(author *models.User, titleID, reviewID uint, text string) (*models.Comment, error) {
	review, err := s.reviews.GetByTitle(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{AuthorID: author.ID, ReviewID: review.ID, Text: text}
	if err := s.comments.Create(comment); err != nil {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

func (s *CommentService) Update(comment *models.Comment, text *string) (*models.Comment, error) {
	updated := *comment
	if text != nil {
		updated.Text = *text
	}
	if err := s.comments.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *CommentService) Delete(comment *models.Comment) error {
	return s.comments.Delete(comment.ID)
}
