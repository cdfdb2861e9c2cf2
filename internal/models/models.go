package models

import (
	"time"
)

// Category is the fixed set of tags a post can carry. Posts are filtered by
// exact, case-sensitive match against these values.
type Category string

const (
	CategorySafety        Category = "safety"
	CategoryLostPet       Category = "lost-pet"
	CategoryEvent         Category = "event"
	CategoryQuestion      Category = "question"
	CategoryAccessibility Category = "accessibility"
	CategoryOther         Category = "other"
)

// Categories lists every valid post category.
var Categories = []Category{
	CategorySafety,
	CategoryLostPet,
	CategoryEvent,
	CategoryQuestion,
	CategoryAccessibility,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultNeighborhood is used when a user or post omits a neighborhood.
const DefaultNeighborhood = "Downtown"

// User represents a Safe Haven resident account.
type User struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`

	// Bcrypt hash of the password. Never serialized.
	PasswordHash string `gorm:"not null" json:"-"`

	Neighborhood string `gorm:"not null;default:Downtown" json:"neighborhood"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Post is a community update: a safety alert, lost pet, event, and so on.
type Post struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	// AuthorName is copied from the user at creation time and is not kept in
	// sync with later profile edits.
	AuthorName string `gorm:"not null" json:"author_name"`

	Category     Category `gorm:"not null;index;type:text" json:"category"`
	Title        string   `json:"title"`
	Description  string   `gorm:"not null;type:text" json:"description"`
	Neighborhood string   `gorm:"not null;default:Downtown" json:"neighborhood"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Engagement counters. Incremented only via single atomic UPDATE
	// statements, never read-modify-write in the application.
	Views   int `gorm:"not null;default:0" json:"views"`
	Helpful int `gorm:"not null;default:0" json:"helpful"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Comment is a reply to a post.
type Comment struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID     uint   `gorm:"not null;index" json:"post_id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	AuthorName string `gorm:"not null" json:"author_name"`
	Text       string `gorm:"not null;type:text" json:"text"`

	CreatedAt time.Time `json:"created_at"`
}

// Image is an attachment URL for a post.
type Image struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
	URL    string `gorm:"not null" json:"url"`

	CreatedAt time.Time `json:"created_at"`
}
