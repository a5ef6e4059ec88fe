package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ulasan/internal/middleware"
	"ulasan/internal/models"
	"ulasan/internal/permissions"
	"ulasan/internal/services"
	"ulasan/internal/validation"
)

// UserHandler handles account administration and the caller's own profile.
type UserHandler struct {
	service  *services.UserService
	pager    Paginator
	validate *validation.Validator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, pager Paginator) *UserHandler {
	return &UserHandler{
		service:  service,
		pager:    pager,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the user routes. /users/me is registered first so
// it is never taken for a username.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	admin := middleware.Require(permissions.OwnerOrAdmin{})
	self := middleware.Require(permissions.Authenticated{})

	userRoutes := router.Group("/users")
	userRoutes.Get("/me", self, h.HandleGetMe)
	userRoutes.Patch("/me", self, h.HandleUpdateMe)
	userRoutes.Get("/", admin, h.HandleListUsers)
	userRoutes.Post("/", admin, h.HandleCreateUser)
	userRoutes.Get("/:username", admin, h.HandleGetUser)
	userRoutes.Patch("/:username", admin, h.HandleUpdateUser)
	userRoutes.Delete("/:username", admin, h.HandleDeleteUser)
}

// CreateUserRequest is the admin form for a new account.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,max=150,username,notme"`
	Email     string `json:"email" validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial profile update.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitnil,min=1,max=150,username,notme"`
	Email     *string `json:"email" validate:"omitnil,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitnil,oneof=user moderator admin"`
}

func (r UpdateUserRequest) patch() services.UserPatch {
	p := services.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
	if r.Role != nil {
		role := models.Role(*r.Role)
		p.Role = &role
	}
	return p
}

// HandleListUsers lists accounts, optionally filtered by ?search= on username.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page, err := h.pager.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	users, total, err := h.service.List(c.Query("search"), page.window())
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page, total, users)
}

func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      models.Role(req.Role),
	}
	if err := h.service.Create(user); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateUserRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.service.Update(user.Username, req.patch())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(user.Username); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetMe returns the caller's own profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// HandleUpdateMe updates the caller's own profile. Role is never changed here.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.service.UpdateSelf(middleware.CurrentUser(c), req.patch())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// loadUser fetches the account named in the path and applies the object check.
func (h *UserHandler) loadUser(c *fiber.Ctx) (*models.User, error) {
	user, err := h.service.Get(c.Params("username"))
	if err != nil {
		return nil, err
	}
	if err := permissions.CheckObject(permissions.OwnerOrAdmin{}, middleware.CurrentUser(c), c.Method(), user); err != nil {
		return nil, err
	}
	return user, nil
}
