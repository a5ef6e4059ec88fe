package repositories

import "ulasan/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	List(search string, page Page) ([]models.User, int64, error)
	Update(user *models.User) error
	SetConfirmationCode(id uint, codeHash string) error
	// Delete removes the user together with the reviews and comments they wrote.
	Delete(id uint) error
}
