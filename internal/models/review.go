package models

import "time"

const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 1
)

// Review is a user's scored opinion of a Title. A user may review a title once.
type Review struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	AuthorID uint      `json:"-" gorm:"not null;uniqueIndex:idx_reviews_author_title"`
	Author   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	TitleID  uint      `json:"-" gorm:"not null;uniqueIndex:idx_reviews_author_title;index"`
	Title    *Title    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Score    int       `json:"score" gorm:"not null;default:1;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime"`
}

// Comment is attached to a Review, never directly to a Title.
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	AuthorID uint      `json:"-" gorm:"not null;index"`
	Author   *User     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	ReviewID uint      `json:"review" gorm:"not null;index"`
	Review   *Review   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Genre{}, &Title{}, &Review{}, &Comment{}}
}

func (r *Review) OwnerID() uint { return r.AuthorID }

func (c *Comment) OwnerID() uint { return c.AuthorID }
