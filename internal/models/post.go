// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Category classifies a post. Only the values in Categories are accepted.
type Category string

const (
	CategoryRecipes       Category = "Recipes"
	CategoryOrganizations Category = "Organizations"
	CategoryOffers        Category = "Offers"
	CategoryWeeklyMenu    Category = "Weekly Menu"
)

// Categories lists every valid post category in display order.
var Categories = []Category{
	CategoryRecipes,
	CategoryOrganizations,
	CategoryOffers,
	CategoryWeeklyMenu,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post represents a post in the community feed.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     *User    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Category Category `gorm:"size:32;not null;index" json:"category"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	Location *string  `gorm:"size:255" json:"location"`
	Tags     *string  `gorm:"type:text" json:"tags"`
	ImageURL *string  `gorm:"type:text" json:"image_url"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Shares   []Share   `gorm:"foreignKey:PostID" json:"shares,omitempty"`

	// Counts are never persisted; they are computed by the query that loads the post.
	LikesCount    int  `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int  `gorm:"->;-:migration" json:"comments_count"`
	SharesCount   int  `gorm:"->;-:migration" json:"shares_count"`
	Liked         bool `gorm:"->;-:migration" json:"liked"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagList splits the comma-separated tags into trimmed, non-empty values.
func (p *Post) TagList() []string {
	if p.Tags == nil {
		return []string{}
	}
	out := []string{}
	for _, tag := range strings.Split(*p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// MarshalJSON adds the derived tags_list array next to the raw tags string.
func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	return json.Marshal(struct {
		alias
		TagsList []string `json:"tags_list"`
	}{alias: alias(p), TagsList: p.TagList()})
}
