package models

import (
	"time"
)

// Categories a recipe can belong to. Filtering stays substring-based, so
// legacy spellings already stored keep matching.
var CategoryChoices = []string{
	"Breakfast",
	"Main Course",
	"Dessert",
	"Appetizer",
	"Salad",
	"Vegetarian",
	"Drink",
}

// IsValidCategory reports whether the given category is one of the canonical choices
func IsValidCategory(category string) bool {
	for _, c := range CategoryChoices {
		if c == category {
			return true
		}
	}
	return false
}

// Recipe represents a recipe owned by a user.
// Ingredients are stored as comma-separated free text, matching the submission format.
type Recipe struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	Ingredients     string    `json:"ingredients"`
	Instructions    string    `json:"instructions"`
	Category        string    `gorm:"not null" json:"category"`
	PreparationTime int       `json:"preparation_time"`
	CookingTime     int       `json:"cooking_time"`
	Servings        int       `json:"servings"`
	CreatedDate     time.Time `gorm:"autoCreateTime" json:"created_date"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Ratings         []Rating  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RankedRecipe is a recipe annotated with its rating aggregates, as returned
// by the highest-rated and most-popular views. AverageRating is null for
// recipes that have never been rated.
type RankedRecipe struct {
	Recipe
	AverageRating *float64 `json:"average_rating"`
	RatingsCount  int64    `json:"ratings_count"`
}
