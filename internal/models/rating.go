package models

import (
	"time"
)

// Rating is a single user's score for a recipe.
// The composite unique index enforces one rating per (recipe, user) pair at the
// storage layer, so concurrent duplicate submissions cannot both commit.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_user" json:"recipe_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_recipe_user" json:"user_id"`
	Score     int       `gorm:"not null" json:"score"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
