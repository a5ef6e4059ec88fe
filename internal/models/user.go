package models

import "time"

// Role is the access level granted to a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents an account on the review platform.
type User struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	FirstName        string    `json:"first_name" gorm:"size:150"`
	LastName         string    `json:"last_name" gorm:"size:150"`
	Bio              string    `json:"bio" gorm:"type:text"`
	Role             Role      `json:"role" gorm:"size:20;not null;default:user"`
	IsSuperuser      bool      `json:"-" gorm:"not null;default:false"`
	ConfirmationCode *string   `json:"-" gorm:"size:255"` // bcrypt hash of the last issued code
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// IsAdmin is true for the admin role and for superusers regardless of role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

// IsModerator is true only for the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// IsStaff is true for moderators, admins and superusers.
func (u *User) IsStaff() bool {
	return u.IsModerator() || u.IsAdmin()
}

// OwnerID makes an account the owner of itself.
func (u *User) OwnerID() uint { return u.ID }
