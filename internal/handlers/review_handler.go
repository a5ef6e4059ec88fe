package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"ulasan/internal/apperrors"
	"ulasan/internal/middleware"
	"ulasan/internal/models"
	"ulasan/internal/permissions"
	"ulasan/internal/services"
	"ulasan/internal/validation"
)

// ReviewHandler serves reviews of a title and the comments under them.
type ReviewHandler struct {
	reviews  *services.ReviewService
	comments *services.CommentService
	pager    Paginator
	validate *validation.Validator
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService, comments *services.CommentService, pager Paginator) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		comments: comments,
		pager:    pager,
		validate: validation.New(),
	}
}

var authorPolicy = permissions.AuthorOrStaffOrReadOnly{}

// RegisterRoutes registers the nested review and comment routes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	require := middleware.Require(authorPolicy)

	reviewRoutes := router.Group("/titles/:title_id/reviews")
	reviewRoutes.Get("/", require, h.HandleListReviews)
	reviewRoutes.Post("/", require, h.HandleCreateReview)
	reviewRoutes.Get("/:review_id", require, h.HandleGetReview)
	reviewRoutes.Patch("/:review_id", require, h.HandleUpdateReview)
	reviewRoutes.Delete("/:review_id", require, h.HandleDeleteReview)

	commentRoutes := reviewRoutes.Group("/:review_id/comments")
	commentRoutes.Get("/", require, h.HandleListComments)
	commentRoutes.Post("/", require, h.HandleCreateComment)
	commentRoutes.Get("/:comment_id", require, h.HandleGetComment)
	commentRoutes.Patch("/:comment_id", require, h.HandleUpdateComment)
	commentRoutes.Delete("/:comment_id", require, h.HandleDeleteComment)
}

// ReviewRequest is a review write. Score defaults to 1 when omitted on create.
type ReviewRequest struct {
	Text  *string `json:"text" validate:"omitnil,min=1"`
	Score *int    `json:"score" validate:"omitnil,min=1,max=10"`
}

// CommentRequest is a comment write.
type CommentRequest struct {
	Text *string `json:"text" validate:"omitnil,min=1"`
}

// ReviewResponse renders a review with its author's username.
type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// CommentResponse renders a comment with its author's username.
type CommentResponse struct {
	ID      uint      `json:"id"`
	Review  uint      `json:"review"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  authorName(r.Author),
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

func toCommentResponse(cm *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      cm.ID,
		Review:  cm.ReviewID,
		Text:    cm.Text,
		Author:  authorName(cm.Author),
		PubDate: cm.PubDate,
	}
}

func authorName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}

func requiredText(text *string) error {
	if text == nil {
		return apperrors.FieldValidation("text", "This field is required.")
	}
	return nil
}

func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	titleID, err := idParam(c, "title_id")
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	reviews, total, err := h.reviews.List(titleID, page.window())
	if err != nil {
		return respondError(c, err)
	}
	results := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		results[i] = toReviewResponse(&reviews[i])
	}
	return respondPage(c, page, total, results)
}

// HandleCreateReview adds the caller's review. A second review of the same
// title by the same user is rejected with 400.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	titleID, err := idParam(c, "title_id")
	if err != nil {
		return respondError(c, err)
	}
	var req ReviewRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	if err := requiredText(req.Text); err != nil {
		return respondError(c, err)
	}

	review, err := h.reviews.Create(middleware.CurrentUser(c), titleID, *req.Text, req.Score)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReviewResponse(review))
}

func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.loadReview(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReviewResponse(review))
}

func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	review, err := h.loadReview(c)
	if err != nil {
		return respondError(c, err)
	}
	var req ReviewRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.reviews.Update(review, req.Text, req.Score)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReviewResponse(updated))
}

func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	review, err := h.loadReview(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.reviews.Delete(review); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// loadReview resolves the review under its title and applies the object check.
func (h *ReviewHandler) loadReview(c *fiber.Ctx) (*models.Review, error) {
	titleID, err := idParam(c, "title_id")
	if err != nil {
		return nil, err
	}
	reviewID, err := idParam(c, "review_id")
	if err != nil {
		return nil, err
	}
	review, err := h.reviews.Get(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(authorPolicy, middleware.CurrentUser(c), c.Method(), review); err != nil {
		return nil, err
	}
	return review, nil
}

func (h *ReviewHandler) HandleListComments(c *fiber.Ctx) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	comments, total, err := h.comments.List(titleID, reviewID, page.window())
	if err != nil {
		return respondError(c, err)
	}
	results := make([]CommentResponse, len(comments))
	for i := range comments {
		results[i] = toCommentResponse(&comments[i])
	}
	return respondPage(c, page, total, results)
}

func (h *ReviewHandler) HandleCreateComment(c *fiber.Ctx) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CommentRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	if err := requiredText(req.Text); err != nil {
		return respondError(c, err)
	}

	comment, err := h.comments.Create(middleware.CurrentUser(c), titleID, reviewID, *req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCommentResponse(comment))
}

func (h *ReviewHandler) HandleGetComment(c *fiber.Ctx) error {
	comment, err := h.loadComment(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCommentResponse(comment))
}

func (h *ReviewHandler) HandleUpdateComment(c *fiber.Ctx) error {
	comment, err := h.loadComment(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CommentRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.comments.Update(comment, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCommentResponse(updated))
}

func (h *ReviewHandler) HandleDeleteComment(c *fiber.Ctx) error {
	comment, err := h.loadComment(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.comments.Delete(comment); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// loadComment resolves the full title/review/comment path; any mismatch is a 404.
func (h *ReviewHandler) loadComment(c *fiber.Ctx) (*models.Comment, error) {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return nil, err
	}
	commentID, err := idParam(c, "comment_id")
	if err != nil {
		return nil, err
	}
	comment, err := h.comments.Get(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(authorPolicy, middleware.CurrentUser(c), c.Method(), comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func reviewPath(c *fiber.Ctx) (titleID, reviewID uint, err error) {
	if titleID, err = idParam(c, "title_id"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = idParam(c, "review_id"); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}
