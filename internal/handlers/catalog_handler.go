package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ulasan/internal/middleware"
	"ulasan/internal/models"
	"ulasan/internal/permissions"
	"ulasan/internal/services"
	"ulasan/internal/validation"
)

// CatalogHandler serves the category and genre dictionaries.
type CatalogHandler struct {
	service  *services.CatalogService
	pager    Paginator
	validate *validation.Validator
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, pager Paginator) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		pager:    pager,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the category and genre routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	require := middleware.Require(permissions.AdminOrReadOnly{})

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", require, h.HandleListCategories)
	categoryRoutes.Post("/", require, h.HandleCreateCategory)
	categoryRoutes.Delete("/:slug", require, h.HandleDeleteCategory)

	genreRoutes := router.Group("/genres")
	genreRoutes.Get("/", require, h.HandleListGenres)
	genreRoutes.Post("/", require, h.HandleCreateGenre)
	genreRoutes.Delete("/:slug", require, h.HandleDeleteGenre)
}

// SlugRequest is the body for creating a category or a genre.
type SlugRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	categories, total, err := h.service.ListCategories(c.Query("search"), page.window())
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page, total, categories)
}

func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req SlugRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.service.CreateCategory(category); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleDeleteCategory removes a category. Its titles are kept, uncategorized.
func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) HandleListGenres(c *fiber.Ctx) error {
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	genres, total, err := h.service.ListGenres(c.Query("search"), page.window())
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page, total, genres)
}

func (h *CatalogHandler) HandleCreateGenre(c *fiber.Ctx) error {
	var req SlugRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.service.CreateGenre(genre); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// HandleDeleteGenre removes a genre and unlinks it from every title.
func (h *CatalogHandler) HandleDeleteGenre(c *fiber.Ctx) error {
	if err := h.service.DeleteGenre(c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
