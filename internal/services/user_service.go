package services

import (
	"fmt"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
	"ulasan/internal/repositories"
	"ulasan/internal/validation"
)

// UserPatch carries the profile fields to change. Nil fields stay untouched.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

// UserService handles account administration and self-service profiles.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(search string, page repositories.Page) ([]models.User, int64, error) {
	return s.repo.List(search, page)
}

func (s *UserService) Get(username string) (*models.User, error) {
	return s.repo.GetByUsername(username)
}

// Create adds an account on behalf of an admin. An empty role means RoleUser.
func (s *UserService) Create(user *models.User) error {
	if validation.IsReservedUsername(user.Username) {
		return apperrors.FieldValidation("username", fmt.Sprintf("The username %q is not available.", validation.ReservedUsername))
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !user.Role.Valid() {
		return apperrors.FieldValidation("role", fmt.Sprintf("%q is not a valid role.", user.Role))
	}
	if err := s.repo.Create(user); err != nil {
		return uniqueFieldError(err)
	}
	return nil
}

// Update applies patch to the account named username, role included.
func (s *UserService) Update(username string, patch UserPatch) (*models.User, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.apply(user, patch)
}

// UpdateSelf applies patch to the caller's own account. A submitted role is
// ignored so nobody can change their own access level.
func (s *UserService) UpdateSelf(user *models.User, patch UserPatch) (*models.User, error) {
	patch.Role = nil
	return s.apply(user, patch)
}

func (s *UserService) apply(user *models.User, patch UserPatch) (*models.User, error) {
	updated := *user
	if patch.Username != nil {
		if validation.IsReservedUsername(*patch.Username) {
			return nil, apperrors.FieldValidation("username", fmt.Sprintf("The username %q is not available.", validation.ReservedUsername))
		}
		updated.Username = *patch.Username
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.FirstName != nil {
		updated.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		updated.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		updated.Bio = *patch.Bio
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperrors.FieldValidation("role", fmt.Sprintf("%q is not a valid role.", *patch.Role))
		}
		updated.Role = *patch.Role
	}
	if err := s.repo.Update(&updated); err != nil {
		return nil, uniqueFieldError(err)
	}
	return &updated, nil
}

// Delete removes the account and, with it, everything its owner wrote.
func (s *UserService) Delete(username string) error {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return err
	}
	return s.repo.Delete(user.ID)
}

func uniqueFieldError(err error) error {
	if apperrors.KindOf(err) == apperrors.KindConflict {
		return apperrors.Validation("A user with this username or email already exists.", nil)
	}
	return err
}
