package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ulasan/internal/apperrors"
)

// Page selects a window of a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// translate classifies a GORM error. what names the record for messages.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(fmt.Sprintf("%s already exists", what), err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func likePattern(s string) string {
	return "%" + s + "%"
}
