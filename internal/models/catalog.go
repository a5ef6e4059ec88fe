package models

// Category is the single-valued classification of a Title.
type Category struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

// Genre is a multi-valued classification of a Title.
type Genre struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

// Title is a creative work that users review.
// Deleting its category leaves the title in place with no category.
type Title struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  *uint     `json:"-" gorm:"index"`
	Category    *Category `json:"category" gorm:"constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

// RatedTitle is a Title together with its average review score.
// Rating is nil when the title has no reviews.
type RatedTitle struct {
	Title
	Rating *float64 `json:"rating"`
}
