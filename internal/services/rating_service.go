package services

import (
	"errors"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
)

// ErrAlreadyRated is returned when the (recipe, user) pair already has a rating
var ErrAlreadyRated = errors.New("already_rated")

type RatingService interface {
	// RateRecipe records a rating for the recipe by the given user.
	// The user id always comes from the authenticated identity, never the payload.
	RateRecipe(recipeID, userID uint, score int, review string) (*models.Rating, error)
	// RatingsForRecipe lists the ratings attached to a recipe
	RatingsForRecipe(recipeID uint) ([]models.Rating, error)
}

type ratingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) RatingService {
	return &ratingService{db: db}
}

func (s *ratingService) RateRecipe(recipeID, userID uint, score int, review string) (*models.Rating, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Rating{}).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRated
	}

	rating := &models.Rating{
		RecipeID: recipeID,
		UserID:   userID,
		Score:    score,
		Review:   review,
	}
	if err := s.db.Create(rating).Error; err != nil {
		// The unique index on (recipe_id, user_id) closes the race between
		// the exists-check above and this insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) RatingsForRecipe(recipeID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.db.Where("recipe_id = ?", recipeID).Order("created_at ASC").Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
