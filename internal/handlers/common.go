package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ulasan/internal/apperrors"
	"ulasan/internal/repositories"
	"ulasan/internal/validation"
)

// respondError writes err as a JSON error body with the status of its kind.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperrors.KindInternal {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	if appErr.Kind == apperrors.KindUnavailable {
		log.Printf("Partial failure on %s %s: %v", c.Method(), c.Path(), err)
	}
	body := fiber.Map{"message": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	return c.Status(statusOf(appErr.Kind)).JSON(body)
}

func statusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindConflict:
		return fiber.StatusBadRequest
	case apperrors.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperrors.KindAuthorization:
		return fiber.StatusForbidden
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindUnavailable:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// parseBody decodes the JSON body into req and validates it.
func parseBody(c *fiber.Ctx, v *validation.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Validation("Invalid request body", map[string]string{"body": err.Error()})
	}
	return v.Struct(req)
}

// idParam reads a numeric path parameter. Anything else cannot name a
// resource, so it is reported as not found.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound("%s %q not found", name, raw)
	}
	return uint(id), nil
}

// Paginator turns page/page_size query parameters into a repository window.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

type pageRequest struct {
	number int
	size   int
}

func (p Paginator) parse(c *fiber.Ctx) (pageRequest, error) {
	req := pageRequest{number: 1, size: p.DefaultSize}
	if req.size <= 0 {
		req.size = 10
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, apperrors.FieldValidation("page", "Invalid page.")
		}
		req.number = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, apperrors.FieldValidation("page_size", "Invalid page size.")
		}
		req.size = n
		if p.MaxSize > 0 && n > p.MaxSize {
			req.size = p.MaxSize
		}
	}
	return req, nil
}

func (r pageRequest) window() repositories.Page {
	return repositories.Page{Limit: r.size, Offset: (r.number - 1) * r.size}
}

// respondPage writes the list envelope {count, next, previous, results}.
func respondPage(c *fiber.Ctx, req pageRequest, total int64, results any) error {
	var next, previous any
	if int64(req.number*req.size) < total {
		next = req.number + 1
	}
	if req.number > 1 {
		previous = req.number - 1
	}
	return c.JSON(fiber.Map{
		"count":    total,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}
