package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ulasan/internal/apperrors"
	"ulasan/internal/middleware"
	"ulasan/internal/models"
	"ulasan/internal/permissions"
	"ulasan/internal/repositories"
	"ulasan/internal/services"
	"ulasan/internal/validation"
)

// TitleHandler serves the title catalogue.
type TitleHandler struct {
	service  *services.TitleService
	pager    Paginator
	validate *validation.Validator
}

// NewTitleHandler creates a new TitleHandler.
func NewTitleHandler(service *services.TitleService, pager Paginator) *TitleHandler {
	return &TitleHandler{
		service:  service,
		pager:    pager,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the title routes.
func (h *TitleHandler) RegisterRoutes(router fiber.Router) {
	require := middleware.Require(permissions.AdminOrReadOnly{})

	titleRoutes := router.Group("/titles")
	titleRoutes.Get("/", require, h.HandleListTitles)
	titleRoutes.Post("/", require, h.HandleCreateTitle)
	titleRoutes.Get("/:title_id", require, h.HandleGetTitle)
	titleRoutes.Put("/:title_id", require, h.HandleReplaceTitle)
	titleRoutes.Patch("/:title_id", require, h.HandleUpdateTitle)
	titleRoutes.Delete("/:title_id", require, h.HandleDeleteTitle)
}

// TitleRequest is a title write; category and genre are given by slug.
type TitleRequest struct {
	Name        *string  `json:"name" validate:"omitnil,min=1,max=256"`
	Year        *int     `json:"year" validate:"omitnil,min=0,notfutureyear"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" validate:"omitempty,dive,required"`
	Category    *string  `json:"category" validate:"omitnil,min=1"`
}

func (r TitleRequest) input() services.TitleInput {
	return services.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Genres:      r.Genre,
		Category:    r.Category,
	}
}

// HandleListTitles lists titles filtered by name, genre, category and year.
func (h *TitleHandler) HandleListTitles(c *fiber.Ctx) error {
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repositories.TitleFilter{
		Name:     c.Query("name"),
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, apperrors.FieldValidation("year", "Enter a whole number."))
		}
		filter.Year = &year
	}

	titles, total, err := h.service.List(filter, page.window())
	if err != nil {
		return respondError(c, err)
	}
	for i := range titles {
		normalizeTitle(&titles[i])
	}
	return respondPage(c, page, total, titles)
}

func (h *TitleHandler) HandleGetTitle(c *fiber.Ctx) error {
	id, err := idParam(c, "title_id")
	if err != nil {
		return respondError(c, err)
	}
	title, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	normalizeTitle(title)
	return c.JSON(title)
}

func (h *TitleHandler) HandleCreateTitle(c *fiber.Ctx) error {
	var req TitleRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	title, err := h.service.Create(req.input())
	if err != nil {
		return respondError(c, err)
	}
	normalizeTitle(title)
	return c.Status(fiber.StatusCreated).JSON(title)
}

// HandleReplaceTitle is a full update; every required field must be sent.
func (h *TitleHandler) HandleReplaceTitle(c *fiber.Ctx) error {
	return h.update(c, false)
}

func (h *TitleHandler) HandleUpdateTitle(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *TitleHandler) update(c *fiber.Ctx, partial bool) error {
	id, err := idParam(c, "title_id")
	if err != nil {
		return respondError(c, err)
	}
	var req TitleRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	title, err := h.service.Update(id, req.input(), partial)
	if err != nil {
		return respondError(c, err)
	}
	normalizeTitle(title)
	return c.JSON(title)
}

// HandleDeleteTitle removes a title with its reviews and their comments.
func (h *TitleHandler) HandleDeleteTitle(c *fiber.Ctx) error {
	id, err := idParam(c, "title_id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// normalizeTitle makes a title without genres render "genre": [] rather than null.
func normalizeTitle(t *models.RatedTitle) {
	if t.Genres == nil {
		t.Genres = []models.Genre{}
	}
}
